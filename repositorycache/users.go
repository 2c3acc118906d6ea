package repositorycache

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/store"
)

// CachedUserDirectory caches email lookups used when picking a
// recommendation recipient. Account reads are not cached.
type CachedUserDirectory struct {
	base  store.UserStore
	cache *Cache
}

// NewCachedUserDirectory decorates base with c.
func NewCachedUserDirectory(base store.UserStore, c *Cache) *CachedUserDirectory {
	return &CachedUserDirectory{base: base, cache: c}
}

// Search returns up to store.UserSearchLimit users whose email contains
// term.
func (d *CachedUserDirectory) Search(ctx context.Context, term string) ([]model.UserSummary, bool, error) {
	key := d.cache.keys.UserSearch(term)
	return GetOrFetch(ctx, d.cache, ResourceUserSearch, key, d.cache.searchTTL, func(ctx context.Context) ([]model.UserSummary, error) {
		users, err := d.base.SearchByEmail(ctx, term, store.UserSearchLimit)
		if users == nil {
			users = []model.UserSummary{}
		}
		return users, err
	})
}

// FindByEmail reads an account by email.
func (d *CachedUserDirectory) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return d.base.FindByEmail(ctx, email)
}

// FindByID reads an account by id.
func (d *CachedUserDirectory) FindByID(ctx context.Context, id primitive.ObjectID) (model.User, error) {
	return d.base.FindByID(ctx, id)
}

// Create stores a new account and drops every cached email lookup, since
// the new address may match any of them.
func (d *CachedUserDirectory) Create(ctx context.Context, u model.User) (model.User, error) {
	created, err := d.base.Insert(ctx, u)
	if err != nil {
		return created, err
	}
	d.cache.Invalidate(ctx, Pattern(d.cache.keys.UserSearchPattern()))
	return created, nil
}
