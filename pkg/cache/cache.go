// Package cache stores package metadata fetched from remote sources.
//
// Entries are opaque byte slices with a per-entry TTL. Three backends are
// provided: [FileCache] for the normal CLI case, [RedisCache] for sharing
// metadata between machines, and [NullCache] when caching is disabled.
// [Namespace] scopes a backend so that different sources cannot collide.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a key/value store with per-entry expiration.
//
// Get reports a miss with ok=false and a nil error. Expired and corrupt
// entries are misses too.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON reads key and unmarshals it into v. A value that does not decode
// is reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// namespaced prefixes every key passed to the wrapped cache.
type namespaced struct {
	inner  Cache
	prefix string
}

// Namespace returns a view of c in which every key is prefixed. Nested
// namespaces concatenate: Namespace(Namespace(c, "a:"), "b:") uses "a:b:".
// Closing the view closes the underlying cache.
func Namespace(c Cache, prefix string) Cache {
	if n, ok := c.(*namespaced); ok {
		return &namespaced{inner: n.inner, prefix: n.prefix + prefix}
	}
	return &namespaced{inner: c, prefix: prefix}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return n.inner.Set(ctx, n.prefix+key, data, ttl)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Close() error { return n.inner.Close() }
