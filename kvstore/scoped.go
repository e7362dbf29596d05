package kvstore

import "context"

// Scoped namespaces every key of repo under prefix, e.g. one namespace per browser.
func Scoped(repo Repo, prefix string) Repo {
	return scopedRepo{repo: repo, prefix: prefix + ":"}
}

type scopedRepo struct {
	repo   Repo
	prefix string
}

func (s scopedRepo) Get(ctx context.Context, key string) (string, bool, error) {
	return s.repo.Get(ctx, s.prefix+key)
}

func (s scopedRepo) SetMany(ctx context.Context, values map[string]string) error {
	prefixed := make(map[string]string, len(values))
	for k, v := range values {
		prefixed[s.prefix+k] = v
	}
	return s.repo.SetMany(ctx, prefixed)
}

func (s scopedRepo) RemoveMany(ctx context.Context, keys ...string) error {
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, s.prefix+k)
	}
	return s.repo.RemoveMany(ctx, prefixed...)
}
