// Package repositorycache decorates the listing stores with a read-through,
// write-invalidate cache.
//
// # Overview
//
// Cache is the orchestrator every decorator shares. Reads go through
// GetOrFetch; writes call Invalidate after the store write succeeded. The
// decorators only decide which keys a read uses and which keys a write
// drops:
//
//   - CachedPropertyRepository: single listings and filtered searches
//   - CachedFavouriteRepository: a user's favourites list and single favourites
//   - CachedRecommendationRepository: a user's received and sent recommendations
//   - CachedUserDirectory: email lookups
//
// # Read path
//
//  1. Build the key for the resource (see cache.Keys)
//  2. GET from the cache; a hit is decoded and returned
//  3. On a miss, a cache error, or an undecodable payload, call the store
//  4. SET the result with the resource's expiry
//  5. Return the result
//
// Store errors are returned unchanged and never cached, so a missing
// listing is looked up again on the next request. Concurrent misses on the
// same key share one store call when coalescing is enabled.
//
// # Write path
//
// After a successful write the decorator drops the exact keys of the
// touched record and sweeps the wildcard families whose entries may embed
// it:
//
//	create property    properties:filtered:*
//	update property    property:<id>, properties:filtered:*
//	delete property    property:<id>, properties:filtered:*
//	create favourite   favourites:user:<uid>
//	update favourite   favourites:user:<uid>, favourite:<uid>:<fid>
//	delete favourite   favourites:user:<uid>, favourite:<uid>:<fid>
//	recommend          recommendations:<from>, recommendations:<to>
//	signup             search_users:*
//
// Over-invalidation is accepted; serving a stale search is not.
//
// # Error Handling
//
// A cache.Client only returns *cache.Error. Cache errors are logged at warn
// level and counted in Stats; they never fail a request. A failed
// invalidation does not turn a successful write into an error.
//
// # Usage
//
//	c := repositorycache.NewCache(client, cfg.Cache,
//		repositorycache.WithLogger(logger),
//		repositorycache.WithStats(repositorycache.NewStats(registry)),
//	)
//	properties := repositorycache.NewCachedPropertyRepository(mongo.Properties(), c)
//
//	result, hit, err := properties.Search(ctx, r.URL.Query())
package repositorycache
