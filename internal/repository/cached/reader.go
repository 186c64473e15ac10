// Package cached wraps category fetchers with a short-lived in-process
// cache so repeated questions about the same category within the TTL do
// not hit the database again.
package cached

import (
	"context"
	"time"

	"inventory-agent-be/pkg/agent/dispatch"
	"inventory-agent-be/pkg/agent/state"

	gocache "github.com/patrickmn/go-cache"
)

type Reader struct {
	inner dispatch.Fetcher
	key   string
	cache *gocache.Cache
}

var _ dispatch.Fetcher = &Reader{}

// NewStore builds the shared cache used by all wrapped readers.
func NewStore(ttl time.Duration) *gocache.Cache {
	return gocache.New(ttl, 2*ttl)
}

// Wrap decorates a fetcher with the shared cache under the given key.
func Wrap(key string, inner dispatch.Fetcher, cache *gocache.Cache) *Reader {
	return &Reader{inner: inner, key: key, cache: cache}
}

func (r *Reader) Fetch(ctx context.Context, con *state.Container) state.Delta {
	if hit, ok := r.cache.Get(r.key); ok {
		if delta, ok := hit.(state.Delta); ok {
			return delta
		}
	}
	delta := r.inner.Fetch(ctx, con)
	// Failed fetches are not cached so the next request retries the source.
	if len(delta.Errors) == 0 {
		r.cache.SetDefault(r.key, delta)
	}
	return delta
}
