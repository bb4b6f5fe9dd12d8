package model

import "fmt"

type EdgeKind string

const (
	EdgeItemDish EdgeKind = "item_dish"
	EdgeMenuDish EdgeKind = "menu_dish"
)

// Edge identifies a composition membership. For EdgeItemDish the parent is
// the dish and the child the item; for EdgeMenuDish the parent is the menu
// and the child the dish.
type Edge struct {
	Kind     EdgeKind
	ParentID int64
	ChildID  int64
}

func ItemDishEdge(itemID, dishID int64) Edge {
	return Edge{Kind: EdgeItemDish, ParentID: dishID, ChildID: itemID}
}

func MenuDishEdge(menuID, dishID int64) Edge {
	return Edge{Kind: EdgeMenuDish, ParentID: menuID, ChildID: dishID}
}

func (e Edge) String() string {
	switch e.Kind {
	case EdgeItemDish:
		return fmt.Sprintf("item %d in dish %d", e.ChildID, e.ParentID)
	case EdgeMenuDish:
		return fmt.Sprintf("dish %d in menu %d", e.ChildID, e.ParentID)
	}
	return fmt.Sprintf("%s(%d,%d)", e.Kind, e.ParentID, e.ChildID)
}

// MenuDish is a MenuDish edge with the dish as it resolved when the edge was
// written.
type MenuDish struct {
	MenuID int64       `json:"menu_id"`
	Dish   DishSummary `json:"dish"`
}

// DishItem is an ItemDish edge with its item resolved.
type DishItem struct {
	DishID int64 `json:"dish_id"`
	ItemPortion
}
