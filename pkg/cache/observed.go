package cache

import (
	"context"
	"time"

	"github.com/matzehuels/blendview/pkg/observability"
)

// Observed wraps c so hits, misses and writes are reported to the
// registered cache hooks under keyType.
func Observed(c Cache, keyType string) Cache {
	return &observed{Cache: c, keyType: keyType}
}

type observed struct {
	Cache
	keyType string
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := o.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, o.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, o.keyType)
		}
	}
	return data, hit, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := o.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, o.keyType, len(data))
	return nil
}
