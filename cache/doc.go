// Package cache defines the cache client contract, key construction and the
// helper operations used by the listing service.
//
// # Overview
//
// The package exports:
//
//   - Client: a small string key/value interface implemented by the Redis and
//     in-process backends in internal/cacheinfra
//   - Keys: builders for every key the service reads or invalidates
//   - KeySerializer: joins a resource kind with its arguments and reduces
//     query parameter sets to a fingerprint
//   - Helper: JSON aware get/set plus pattern deletion, logging instead of
//     failing
//
// # Key Layout
//
//	property:<id>
//	properties:filtered:<fingerprint>
//	favourites:user:<userId>
//	favourite:<userId>:<favouriteId>
//	recommendations:<userId>
//	search_users:<lowercased term>
//
// A fingerprint is built from the request parameters. Each parameter is
// rendered as name:value, the pairs are sorted by name, joined with '|' and
// base64 encoded:
//
//	keys := cache.NewKeys(nil)
//	keys.FilteredProperties(url.Values{"type": {"Villa"}, "city": {"Pune"}})
//	// properties:filtered:Y2l0eTpQdW5lfHR5cGU6VmlsbGE=
//
// Two requests with the same parameters in a different order share a key.
// Setting Config.KeyEncoding to "xxhash" trades the readable fingerprint for
// a fixed width hash.
//
// # Errors
//
// Every error returned by a Client is a *Error carrying the operation and key.
// Callers treat it as "continue without the cache":
//
//	raw, found, err := client.Get(ctx, key)
//	if err != nil {
//		// log and read from the store
//	}
//
// Helper goes one step further and never returns errors at all.
package cache
