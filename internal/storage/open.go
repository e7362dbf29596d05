// Package storage picks the key-value backend named by the configuration.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-taskmaster/internal/config"
	"github.com/jrsteele09/go-taskmaster/kvstore"
	"github.com/jrsteele09/go-taskmaster/kvstore/filekv"
	"github.com/jrsteele09/go-taskmaster/kvstore/kvfake"
	"github.com/jrsteele09/go-taskmaster/kvstore/rediskv"
)

// Open returns the configured store and a func releasing it. ttl bounds how long redis keeps an entry.
func Open(ctx context.Context, cfg config.StorageConfig, ttl time.Duration) (kvstore.Repo, func() error, error) {
	noop := func() error { return nil }

	switch driver := cfg.GetStorageDriver(); driver {
	case config.StorageDriverMemory:
		return kvfake.NewFakeRepo(), noop, nil
	case config.StorageDriverFile:
		return filekv.New(cfg.GetStorageFile()), noop, nil
	case config.StorageDriverRedis:
		repo, err := rediskv.New(ctx, cfg.GetRedisAddr(), cfg.GetRedisPassword(), cfg.GetRedisDB(), ttl)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
