// Package storage keeps uploaded files (resumes, attachments) on local disk
// under random names, with an extension allow-list and a size cap enforced
// at write time.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadStore writes uploads into a single directory.
type UploadStore struct {
	dir        string
	maxSize    int64
	extensions map[string]bool
}

// NewUploadStore creates the directory if needed. Extensions are compared
// case-insensitively and must include the leading dot.
func NewUploadStore(dir string, maxSize int64, extensions []string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}
	return &UploadStore{dir: dir, maxSize: maxSize, extensions: allowed}, nil
}

// Save stores the reader's content under a random name that keeps the
// original extension. Returns the stored file name.
func (s *UploadStore) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !s.extensions[ext] {
		return "", fmt.Errorf("file type %q not allowed", ext)
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	// Read one byte past the cap to distinguish at-limit from over-limit.
	written, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return "", fmt.Errorf("file exceeds %d byte limit", s.maxSize)
	}

	return name, nil
}

// Open returns a reader for a stored file. The name must be one returned
// by Save; path traversal is rejected.
func (s *UploadStore) Open(name string) (io.ReadCloser, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid file name")
	}
	return os.Open(filepath.Join(s.dir, name))
}

// Remove deletes a stored file, ignoring files that are already gone.
func (s *UploadStore) Remove(name string) error {
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid file name")
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
