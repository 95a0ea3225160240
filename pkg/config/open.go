package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/blendview/pkg/cache"
	"github.com/matzehuels/blendview/pkg/store"
)

// Open creates the configured artifact cache.
func (c Cache) Open(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case "redis":
		return cache.NewRedisCache(ctx, c.RedisAddr)
	case "file":
		dir := c.Dir
		if dir == "" {
			base, err := os.UserCacheDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(base, "blendview")
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}

// Open creates the configured capture archive.
func (s Store) Open(ctx context.Context) (store.Store, error) {
	switch s.Backend {
	case "mongo":
		m, err := store.NewMongoStore(ctx, store.MongoConfig{URI: s.MongoURI, Database: s.Database})
		if err != nil {
			return nil, err
		}
		return m, nil
	case "file":
		f, err := store.NewFileStore(s.Dir)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return store.NewMemory(), nil
	}
}
