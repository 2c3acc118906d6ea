package repositorycache

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/store"
)

// CachedFavouriteRepository caches a user's favourites list and single
// favourites, both scoped to the owner.
type CachedFavouriteRepository struct {
	base  store.FavouriteStore
	cache *Cache
}

// NewCachedFavouriteRepository decorates base with c.
func NewCachedFavouriteRepository(base store.FavouriteStore, c *Cache) *CachedFavouriteRepository {
	return &CachedFavouriteRepository{base: base, cache: c}
}

// List returns the owner's favourites, newest first.
func (r *CachedFavouriteRepository) List(ctx context.Context, userID primitive.ObjectID) (model.FavouriteList, bool, error) {
	key := r.cache.keys.UserFavourites(userID)
	return GetOrFetch(ctx, r.cache, ResourceFavourites, key, r.cache.defaultTTL, func(ctx context.Context) (model.FavouriteList, error) {
		favs, err := r.base.ListByUser(ctx, userID)
		if err != nil {
			return model.FavouriteList{}, err
		}
		return model.NewFavouriteList(favs), nil
	})
}

// Get returns one of the owner's favourites.
func (r *CachedFavouriteRepository) Get(ctx context.Context, userID, id primitive.ObjectID) (model.Favourite, bool, error) {
	key := r.cache.keys.Favourite(userID, id)
	return GetOrFetch(ctx, r.cache, ResourceFavourite, key, r.cache.defaultTTL, func(ctx context.Context) (model.Favourite, error) {
		return r.base.Get(ctx, userID, id)
	})
}

// Exists reports whether the owner already saved propertyID.
func (r *CachedFavouriteRepository) Exists(ctx context.Context, userID primitive.ObjectID, propertyID string) (bool, error) {
	return r.base.Exists(ctx, userID, propertyID)
}

// Create stores f and drops the owner's list.
func (r *CachedFavouriteRepository) Create(ctx context.Context, f model.Favourite) (model.Favourite, error) {
	created, err := r.base.Insert(ctx, f)
	if err != nil {
		return created, err
	}
	r.cache.Invalidate(ctx, Key(r.cache.keys.UserFavourites(created.UserID)))
	return created, nil
}

// Update points a favourite at another listing.
func (r *CachedFavouriteRepository) Update(ctx context.Context, userID, id primitive.ObjectID, propertyID string, now time.Time) (model.Favourite, error) {
	updated, err := r.base.UpdateProperty(ctx, userID, id, propertyID, now)
	if err != nil {
		return updated, err
	}
	r.invalidate(ctx, userID, id)
	return updated, nil
}

// Delete removes one of the owner's favourites.
func (r *CachedFavouriteRepository) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	if err := r.base.Delete(ctx, userID, id); err != nil {
		return err
	}
	r.invalidate(ctx, userID, id)
	return nil
}

func (r *CachedFavouriteRepository) invalidate(ctx context.Context, userID, id primitive.ObjectID) {
	r.cache.Invalidate(ctx,
		Key(r.cache.keys.UserFavourites(userID)),
		Key(r.cache.keys.Favourite(userID, id)),
	)
}
