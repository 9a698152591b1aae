// Package cache stores generated mind maps and rendered artifacts so that
// repeated requests skip the remote model and the rasterizer.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI default)
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: disables caching
//
// [Open] picks a backend from a [Config].
//
// # Keys
//
// A [Keyer] builds keys. Mind-map keys hash the model and the normalized
// topic, artifact keys hash the tree together with the render options.
// [NewScopedKeyer] prefixes every key, which lets several users share one
// backend without seeing each other's entries.
package cache
