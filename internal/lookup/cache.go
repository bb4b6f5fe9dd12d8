package lookup

import (
	"context"
	"sync"
	"time"

	"github.com/dukerupert/nutrimenu/internal/compose"
	"github.com/dukerupert/nutrimenu/internal/model"
)

const DefaultUserTTL = 30 * time.Second

type cachedUser struct {
	user      model.User
	fetchedAt time.Time
}

// CachedUsers keeps successful user lookups for a short TTL. Failures are
// never cached so a recovered user service is picked up on the next call.
//
// The users live in another service, which sends no change events, so a
// cached entry can be stale for up to the TTL: after a remote rename the old
// name keeps resolving, and a deleted user keeps resolving by id. Keep the
// TTL short where that matters.
type CachedUsers struct {
	next compose.UserLookup
	ttl  time.Duration
	now  func() time.Time

	mu     sync.RWMutex
	byID   map[int64]cachedUser
	byName map[string]cachedUser
}

func NewCachedUsers(next compose.UserLookup, ttl time.Duration) *CachedUsers {
	if ttl <= 0 {
		ttl = DefaultUserTTL
	}
	return &CachedUsers{
		next:   next,
		ttl:    ttl,
		now:    time.Now,
		byID:   make(map[int64]cachedUser),
		byName: make(map[string]cachedUser),
	}
}

func (c *CachedUsers) UserByID(ctx context.Context, id int64) (*model.User, error) {
	c.mu.RLock()
	e, ok := c.byID[id]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		u := e.user
		return &u, nil
	}

	u, err := c.next.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(u)
	return u, nil
}

func (c *CachedUsers) UserByName(ctx context.Context, name string) (*model.User, error) {
	c.mu.RLock()
	e, ok := c.byName[name]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		u := e.user
		return &u, nil
	}

	u, err := c.next.UserByName(ctx, name)
	if err != nil {
		return nil, err
	}
	c.store(u)
	return u, nil
}

func (c *CachedUsers) store(u *model.User) {
	e := cachedUser{user: *u, fetchedAt: c.now()}
	c.mu.Lock()
	c.byID[u.ID] = e
	c.byName[u.Name] = e
	c.mu.Unlock()
}
