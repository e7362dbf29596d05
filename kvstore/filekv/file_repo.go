package filekv

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-taskmaster/internal/errors"
	"github.com/jrsteele09/go-taskmaster/kvstore"
)

var _ kvstore.Repo = (*Repo)(nil)

// Repo persists values as a single JSON object in a user-private file.
// The file is read on every Get so separate processes see each other's writes,
// and written through a temp file + rename so a crash never leaves half a write behind.
type Repo struct {
	path string
	lock sync.Mutex
}

func New(path string) *Repo {
	return &Repo{path: path}
}

func (r *Repo) Path() string {
	return r.path
}

func (r *Repo) Get(_ context.Context, key string) (string, bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	values, err := r.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (r *Repo) SetMany(_ context.Context, values map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	current, err := r.load()
	if err != nil {
		return err
	}
	for k, v := range values {
		current[k] = v
	}
	return r.save(current)
}

func (r *Repo) RemoveMany(_ context.Context, keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	current, err := r.load()
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := current[k]; ok {
			delete(current, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return r.save(current)
}

func (r *Repo) load() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", r.path)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", r.path)
	}
	return values, nil
}

func (r *Repo) save(values map[string]string) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return errors.Wrapf(err, "creating temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
