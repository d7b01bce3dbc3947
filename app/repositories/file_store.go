package repositories

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskFileStore keeps attachments as plain files in one directory.
type DiskFileStore struct {
	dir string
}

// NewDiskFileStore creates dir if needed.
func NewDiskFileStore(dir string) (*DiskFileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskFileStore{dir: dir}, nil
}

func (s *DiskFileStore) Dir() string {
	return s.dir
}

// Create opens a new file for writing. Existing files are never replaced.
func (s *DiskFileStore) Create(name string) (io.WriteCloser, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid file name %q", name)
	}
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}
	return f, nil
}

func (s *DiskFileStore) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}
