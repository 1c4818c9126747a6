package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// LocalFS keeps snapshots under a base directory.
type LocalFS struct {
	basePath string
}

func NewLocalFS(basePath string) (*LocalFS, error) {
	if basePath == "" {
		return nil, errors.New("archive dir required")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}
	return &LocalFS{basePath: basePath}, nil
}

func (l *LocalFS) fullPath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

func (l *LocalFS) Put(ctx context.Context, key string, data []byte) error {
	p := l.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("creating directories: %w", err)
	}
	return os.WriteFile(p, data, 0644)
}

func (l *LocalFS) Get(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(l.fullPath(key))
}

// List returns the keys under prefix in lexical order.
func (l *LocalFS) List(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	err := filepath.WalkDir(l.fullPath(prefix), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.basePath, p)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	sort.Strings(keys)
	return keys, err
}
