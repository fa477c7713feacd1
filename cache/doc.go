// Package cache provides the key-value cache contract, the payload codec and
// the key space shared by every read-through path in the service.
//
// # Overview
//
//   - Cache: get, multi-get, set with TTL, atomic set-if-absent, delete
//   - KeySpace: entity, list, trending and lock keys
//   - KeySerializer: stable, address-free serialization of filter values
//   - Marshal/Unmarshal: msgpack payloads using the records' json field names
//
// # Basic Usage
//
//	keys := cache.NewKeySpace("")
//	key := keys.Entity("subject:slim", 8)
//
//	if err := cache.SetValue(ctx, c, key, subject, cache.TTLEntity); err != nil {
//		return err
//	}
//	subject, ok, err := cache.GetValue[model.SlimSubject](ctx, c, key)
//
// # Key Serialization Strategy
//
// List keys hash a serialized filter. The default serializer walks the value
// with reflection:
//
//   - Basic types: direct string representation
//   - Slices/arrays: recursive, order preserved
//   - Fields tagged `cachekey:"set"`: elements sorted and de-duplicated
//   - Fields tagged `cachekey:"-"`: skipped
//   - Maps: sorted key-value pairs
//   - Structs: exported fields with name:value pairs
//   - Anything else: JSON, or the type name when JSON fails
//
// Nothing depends on memory addresses, so two processes sharing a remote cache
// compute the same key for the same request.
//
// # Implementations
//
// NewMemoryCache returns the in-process adapter. The redis adapter and the
// circuit breaker wrapper live in internal/cacheinfra and are wired by pkg/di.
package cache
