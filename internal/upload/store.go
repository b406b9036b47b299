package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store persists a normalized image and returns a stable reference for it.
// The reference, not the bytes, is what ends up on the project record.
type Store interface {
	Save(name string, r io.Reader) (ref string, err error)
}

// LocalStore writes images under a directory served at /uploads.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes the image to disk and returns its public path.
func (s *LocalStore) Save(name string, r io.Reader) (string, error) {
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}

	return "/uploads/" + name, nil
}
