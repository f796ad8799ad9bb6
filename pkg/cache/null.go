package cache

import (
	"context"
	"time"
)

// NullCache backs `backend = "none"` and --no-cache: every Get misses and
// writes are dropped, so each lookup goes to the network.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

// Clear succeeds trivially; there is nothing to drop.
func (NullCache) Clear(context.Context) error { return nil }

func (NullCache) Close() error { return nil }
