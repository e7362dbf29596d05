package rediskv

import (
	"context"
	"errors"
	"time"

	"github.com/jrsteele09/go-taskmaster/kvstore"
	"github.com/redis/go-redis/v9"
)

var _ kvstore.Repo = (*Repo)(nil)

// Repo keeps values in Redis. A non-zero ttl is refreshed on every write, so idle browsers expire.
type Repo struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and pings it before returning.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Repo, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return NewFromClient(rdb, ttl), nil
}

func NewFromClient(client *redis.Client, ttl time.Duration) *Repo {
	return &Repo{client: client, ttl: ttl}
}

func (r *Repo) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Repo) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, k, v, r.ttl)
		}
		return nil
	})
	return err
}

func (r *Repo) RemoveMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *Repo) Close() error {
	return r.client.Close()
}
