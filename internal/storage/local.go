package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes media into Dir; files are served under PublicPrefix.
type LocalStore struct {
	Dir          string
	PublicPrefix string
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir, publicPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &LocalStore{Dir: dir, PublicPrefix: strings.TrimRight(publicPrefix, "/")}, nil
}

func (s *LocalStore) Save(ctx context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst := filepath.Join(s.Dir, key)
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("close %s: %w", key, err)
	}
	return s.PublicPrefix + "/" + key, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	err := os.Remove(filepath.Join(s.Dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
