// Package local implements object storage on the local filesystem. It is the
// dev fallback for IBM COS; metadata lives in a sidecar JSON file per object.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cpl-backend/internal/shared/storage/object"
)

const metaSuffix = ".meta.json"

// Store implements ObjectStore using the local filesystem.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) object.ObjectStore {
	return &Store{baseDir: baseDir}
}

// Put writes the reader to disk at the given key and persists metadata.
func (s *Store) Put(ctx context.Context, key string, contentType string, meta object.Metadata, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		return 0, fmt.Errorf("write body: %w", err)
	}

	sidecar := map[string]any{"contentType": contentType, "metadata": meta}
	data, err := json.Marshal(sidecar)
	if err != nil {
		return 0, fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(fullPath+metaSuffix, data, 0o644); err != nil {
		return 0, fmt.Errorf("write metadata: %w", err)
	}

	return written, nil
}

// Get opens a stored object and loads its sidecar metadata if present.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, object.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, object.ErrNotFound
		}
		return nil, nil, err
	}

	meta := object.Metadata{}
	if data, err := os.ReadFile(fullPath + metaSuffix); err == nil {
		var sidecar struct {
			Metadata object.Metadata `json:"metadata"`
		}
		if err := json.Unmarshal(data, &sidecar); err == nil && sidecar.Metadata != nil {
			meta = sidecar.Metadata
		}
	}

	return f, meta, nil
}

func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.baseDir, clean), nil
}

var _ object.ObjectStore = (*Store)(nil)
