// Package repositorycache puts a read-through cache in front of the store.
//
// # Entities
//
// A Fetcher serves one entity kind (users, subjects, characters, ...). It is
// built from a Definition naming the kind, its TTL, the store lookup, the
// row-to-record conversion and the visibility gate:
//
//	fetchers := repositorycache.NewFetchers(db, c, cache.NewKeySpace("chii:"),
//		repositorycache.WithLogger(logger),
//		repositorycache.WithMetrics(collector),
//	)
//	subject, ok, err := fetchers.Subjects.FetchByID(ctx, 8, visibility.Options{})
//
// Records are cached in their converted form under keys from cache.KeySpace.
// The visibility gate runs on every read, including cache hits, so one cached
// record serves viewers with different permissions. Batch reads resolve all
// ids with a single MGet and load the misses with a single store query.
//
// Cache failures are logged and read as misses. Store failures are returned;
// a batch either succeeds as a whole or fails.
//
// # Listings
//
// SubjectBrowser caches pages of subject ids keyed by a hash of the filter,
// the sort and the page number. The first page is kept longer than the rest.
// Sorting by trends reads the monthly list maintained by package trending.
package repositorycache
