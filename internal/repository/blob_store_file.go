package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var blobKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileBlobStore keeps one <key>.json file per blob in a directory. Writes go
// to a temp file that is renamed over the target so readers never observe a
// partial collection.
type FileBlobStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileBlobStore creates dir if needed.
func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	if dir == "" {
		return nil, errors.New("blob directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure blob directory: %w", err)
	}
	return &FileBlobStore{dir: filepath.Clean(dir)}, nil
}

func (s *FileBlobStore) path(key string) (string, error) {
	if !blobKeyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileBlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, true, nil
}

func (s *FileBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close blob %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("promote blob %s: %w", key, err)
	}
	cleanup = false
	return nil
}
