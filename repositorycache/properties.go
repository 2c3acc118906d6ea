package repositorycache

import (
	"context"
	"net/url"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/query"
	"github.com/goliatone/go-property-listing/store"
)

// Resource labels used in the cache statistics.
const (
	ResourceProperty           = "property"
	ResourceFilteredProperties = "properties_filtered"
	ResourceFavourites         = "favourites"
	ResourceFavourite          = "favourite"
	ResourceRecommendations    = "recommendations"
	ResourceUserSearch         = "user_search"
)

// CachedPropertyRepository caches listing reads and invalidates them on
// writes.
type CachedPropertyRepository struct {
	base  store.PropertyStore
	cache *Cache
}

// NewCachedPropertyRepository decorates base with c.
func NewCachedPropertyRepository(base store.PropertyStore, c *Cache) *CachedPropertyRepository {
	return &CachedPropertyRepository{base: base, cache: c}
}

// Search runs a filtered search. The key is the fingerprint of the raw
// request parameters so equivalent queries share an entry whatever their
// order.
func (r *CachedPropertyRepository) Search(ctx context.Context, params url.Values) (query.Result, bool, error) {
	key := r.cache.keys.FilteredProperties(params)
	return GetOrFetch(ctx, r.cache, ResourceFilteredProperties, key, r.cache.defaultTTL, func(ctx context.Context) (query.Result, error) {
		return r.base.Filter(ctx, query.ParseFilter(params))
	})
}

// Get returns one listing. Misses are not cached.
func (r *CachedPropertyRepository) Get(ctx context.Context, id string) (model.Property, bool, error) {
	key := r.cache.keys.Property(id)
	return GetOrFetch(ctx, r.cache, ResourceProperty, key, r.cache.defaultTTL, func(ctx context.Context) (model.Property, error) {
		return r.base.FindByID(ctx, id)
	})
}

// Lookup reads a listing straight from the store. Ownership checks use it
// so they never act on a stale entry.
func (r *CachedPropertyRepository) Lookup(ctx context.Context, id string) (model.Property, error) {
	return r.base.FindByID(ctx, id)
}

// Exists reports whether a listing with id is stored.
func (r *CachedPropertyRepository) Exists(ctx context.Context, id string) (bool, error) {
	return r.base.Exists(ctx, id)
}

// Create stores p and drops every cached search.
func (r *CachedPropertyRepository) Create(ctx context.Context, p model.Property) (model.Property, error) {
	created, err := r.base.Insert(ctx, p)
	if err != nil {
		return created, err
	}
	r.invalidate(ctx, created.PropertyID)
	return created, nil
}

// Update applies patch and drops the listing entry and every cached search.
func (r *CachedPropertyRepository) Update(ctx context.Context, id string, patch model.PropertyPatch) (model.Property, error) {
	updated, err := r.base.Update(ctx, id, patch)
	if err != nil {
		return updated, err
	}
	r.invalidate(ctx, id)
	return updated, nil
}

// Delete removes the listing and drops the listing entry and every cached
// search.
func (r *CachedPropertyRepository) Delete(ctx context.Context, id string) error {
	if err := r.base.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedPropertyRepository) invalidate(ctx context.Context, id string) {
	r.cache.Invalidate(ctx,
		Key(r.cache.keys.Property(id)),
		Pattern(r.cache.keys.FilteredPropertiesPattern()),
	)
}
