package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type localStore struct {
	dir string
}

// NewLocal returns a Store backed by a directory on the local filesystem.
func NewLocal(dir string) (Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("local store dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &localStore{dir: dir}, nil
}

// resolve maps a key onto a path under the store root, rejecting traversal.
func (s *localStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid file key %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *localStore) Save(ctx context.Context, key string, r io.Reader) error {
	_ = ctx
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func (s *localStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	_ = ctx
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return f, nil
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	_ = ctx
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotExist
		}
		return err
	}
	return nil
}
