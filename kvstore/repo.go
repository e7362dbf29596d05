package kvstore

import "context"

// Repo is the persistent key-value capability credentials are kept in.
// Multi-key writes and removals are applied as a single operation by every implementation,
// so a reader never observes half of a SetMany or RemoveMany.
type Repo interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	SetMany(ctx context.Context, values map[string]string) error
	RemoveMany(ctx context.Context, keys ...string) error
}

//go:generate mockgen -destination=mocks/mock_repo.go -package=mocks github.com/jrsteele09/go-taskmaster/kvstore Repo
