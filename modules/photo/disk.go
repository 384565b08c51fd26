package photo

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskObjectStore implements ObjectStore on the local filesystem. Object
// names use forward slashes ("<id>/<file>") and map to paths under the
// base directory.
type DiskObjectStore struct {
	base string
}

var _ ObjectStore = (*DiskObjectStore)(nil)

// NewDiskObjectStore creates the base directory if needed.
func NewDiskObjectStore(dir string) (*DiskObjectStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &DiskObjectStore{base: dir}, nil
}

// path maps an object name to a filesystem path, refusing names that
// would escape the base directory.
func (s *DiskObjectStore) path(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid object name: %q", name)
	}
	return filepath.Join(s.base, filepath.FromSlash(name)), nil
}

// Put writes a blob under the base directory.
func (s *DiskObjectStore) Put(_ context.Context, name string, data []byte, contentType string) (*ObjectInfo, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write object: %w", err)
	}
	return &ObjectInfo{
		Name:        name,
		Size:        uint64(len(data)),
		ContentType: contentType,
		ModTime:     time.Now(),
	}, nil
}

// Get reads a blob back. The content type is derived from the file
// extension since the filesystem keeps no headers.
func (s *DiskObjectStore) Get(_ context.Context, name string) ([]byte, *ObjectInfo, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read object: %w", err)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat object: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return data, &ObjectInfo{
		Name:        name,
		Size:        uint64(len(data)),
		ContentType: contentType,
		ModTime:     stat.ModTime(),
	}, nil
}

// Delete removes a blob and its directory when that becomes empty.
func (s *DiskObjectStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	// Best effort: drop the per-photo directory once empty.
	_ = os.Remove(filepath.Dir(path))
	return nil
}

// Ping verifies the base directory is still accessible.
func (s *DiskObjectStore) Ping(_ context.Context) error {
	stat, err := os.Stat(s.base)
	if err != nil {
		return fmt.Errorf("storage directory inaccessible: %w", err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", s.base)
	}
	return nil
}

// Kind returns the backend name for health reporting.
func (s *DiskObjectStore) Kind() string {
	return "disk"
}
