package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Upload subdirectories. Images and documents are kept apart so the public
// static routes can apply different cache headers.
const (
	ImagesDir  = "images"
	UploadsDir = "uploads"
)

// LocalStorage persists uploaded files on disk under a base directory and
// serves them back as /static/... URLs.
type LocalStorage struct {
	baseDir string
	domain  string
}

// NewLocalStorage ensures the base directory tree exists and returns a handle.
func NewLocalStorage(baseDir, domain string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./static"
	}
	for _, sub := range []string{ImagesDir, UploadsDir} {
		if err := os.MkdirAll(filepath.Join(baseDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create upload directory: %w", err)
		}
	}
	return &LocalStorage{baseDir: baseDir, domain: strings.TrimRight(domain, "/")}, nil
}

// SaveStream copies the reader into {base}/{subdir}/{filename} and returns the
// public URL for the stored file.
func (s *LocalStorage) SaveStream(subdir, filename string, r io.Reader) (string, error) {
	path := filepath.Join(s.baseDir, subdir, filename)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return s.PublicURL(subdir, filename), nil
}

// PublicURL builds the externally visible URL for a stored file.
func (s *LocalStorage) PublicURL(subdir, filename string) string {
	return fmt.Sprintf("%s/static/%s/%s", s.domain, subdir, filename)
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(subdir, filename string) error {
	path := filepath.Join(s.baseDir, subdir, filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// Dir exposes the base directory, used to mount the static file route.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}
