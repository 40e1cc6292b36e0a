// Package storage abstracts the blob store used for uploaded documents,
// profile pictures and generated permits.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage accepts a named binary blob and returns a retrievable path.
type FileStorage interface {
	// Save writes data under the given relative name and returns the
	// public path the blob can be fetched from. Saving over an existing
	// name overwrites it.
	Save(name string, data []byte) (string, error)
	// Exists reports whether a blob with the given name is present.
	Exists(name string) bool
}

// LocalStorage implements FileStorage on the local filesystem.
type LocalStorage struct {
	root       string
	publicPath string
}

// NewLocalStorage creates a LocalStorage rooted at dir. Blobs saved as
// "permits/permit_1.pdf" become retrievable at publicPath+"/permits/permit_1.pdf".
func NewLocalStorage(root, publicPath string) *LocalStorage {
	return &LocalStorage{
		root:       root,
		publicPath: strings.TrimSuffix(publicPath, "/"),
	}
}

// Save writes the blob to disk, creating parent directories as needed.
func (s *LocalStorage) Save(name string, data []byte) (string, error) {
	cleaned, err := s.cleanName(name)
	if err != nil {
		return "", err
	}

	target := filepath.Join(s.root, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", cleaned, err)
	}

	return s.publicPath + "/" + cleaned, nil
}

// Exists reports whether the named blob is on disk.
func (s *LocalStorage) Exists(name string) bool {
	cleaned, err := s.cleanName(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(s.root, filepath.FromSlash(cleaned)))
	return err == nil
}

// cleanName normalizes a blob name and rejects path traversal.
func (s *LocalStorage) cleanName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	cleaned := filepath.ToSlash(filepath.Clean("/" + name))[1:]
	if cleaned == "" {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	return cleaned, nil
}
