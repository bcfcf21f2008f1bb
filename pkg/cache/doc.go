// Package cache provides a minimal generic LRU cache.
//
// It exists to memoize expensive derived values that are cheap to rebuild,
// such as compiled scope matchers, and deliberately offers no TTL or
// persistence. For shared or durable caching use an external store instead.
package cache
