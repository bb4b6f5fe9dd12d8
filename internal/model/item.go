package model

import "time"

// Item is a nutrition item. Its nutrients are expressed per 100 grams.
type Item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Nutrients
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemWeight is one ItemDish edge as stored: the item id and the grams used.
type ItemWeight struct {
	ItemID int64 `json:"item_id"`
	Grams  int   `json:"grams"`
}

// ItemPortion is an ItemDish edge with its item resolved.
type ItemPortion struct {
	Item  Item `json:"item"`
	Grams int  `json:"grams"`
}
