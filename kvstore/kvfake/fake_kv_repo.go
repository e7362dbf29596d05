package kvfake

import (
	"context"
	"sort"
	"sync"

	"github.com/jrsteele09/go-taskmaster/kvstore"
)

var _ kvstore.Repo = (*FakeRepo)(nil)

// FakeRepo is an in-memory kvstore.Repo. It also backs the "memory" storage driver.
type FakeRepo struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		values: make(map[string]string),
	}
}

func (r *FakeRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	v, ok := r.values[key]
	return v, ok, nil
}

func (r *FakeRepo) SetMany(_ context.Context, values map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for k, v := range values {
		r.values[k] = v
	}
	return nil
}

func (r *FakeRepo) RemoveMany(_ context.Context, keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}

// Keys lists the stored keys in order.
func (r *FakeRepo) Keys() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
