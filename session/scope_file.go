package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var _ Scope = (*FileScope)(nil)

const stateFileMode = 0o600

// FileScope persists values as a YAML document so they survive restarts.
// Every write rewrites the whole file through a temp file and rename.
type FileScope struct {
	mu   sync.Mutex
	path string
}

// NewFileScope creates a scope backed by the YAML file at path.
// The file is created on first write.
func NewFileScope(path string) (*FileScope, error) {
	if path == "" {
		return nil, errors.New("[NewFileScope] path is required")
	}
	return &FileScope{path: path}, nil
}

// Path returns the backing file location
func (f *FileScope) Path() string {
	return f.path
}

func (f *FileScope) Load(_ context.Context, keys ...string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.read()
	if err != nil {
		return nil, err
	}
	found := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			found[k] = v
		}
	}
	return found, nil
}

func (f *FileScope) Store(_ context.Context, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.read()
	if err != nil {
		return err
	}
	for k, v := range values {
		all[k] = v
	}
	return f.write(all)
}

func (f *FileScope) Remove(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.read()
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := all[k]; ok {
			delete(all, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.write(all)
}

func (f *FileScope) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileScope.read] os.ReadFile")
	}

	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "[FileScope.read] yaml.Unmarshal")
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

func (f *FileScope) write(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "[FileScope.write] yaml.Marshal")
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "[FileScope.write] os.MkdirAll")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "[FileScope.write] os.CreateTemp")
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileScope.write] write temp file")
	}
	if err := tmp.Chmod(stateFileMode); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileScope.write] chmod temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[FileScope.write] close temp file")
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrap(err, "[FileScope.write] os.Rename")
	}
	return nil
}
