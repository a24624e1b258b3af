package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore persists attachment payloads outside the database.
type FileStore interface {
	// Save writes the payload and returns the stored filename and full path.
	Save(originalName string, r io.Reader) (filename, path string, err error)
	// Remove deletes a stored file. Missing files are not an error.
	Remove(path string) error
}

// LocalFileStore stores attachment files on local disk under a base dir.
// Stored names are UUIDv7 so concurrent uploads of the same original name
// never collide and stay time-sortable on disk.
type LocalFileStore struct {
	baseDir string
}

// NewLocalFileStore creates the base directory if needed.
func NewLocalFileStore(baseDir string) (*LocalFileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalFileStore{baseDir: baseDir}, nil
}

// Save writes the payload to disk under a generated name.
func (s *LocalFileStore) Save(originalName string, r io.Reader) (string, string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	filename := id.String() + filepath.Ext(originalName)
	path := filepath.Join(s.baseDir, filename)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("create attachment file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", "", fmt.Errorf("write attachment file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", "", fmt.Errorf("close attachment file: %w", err)
	}
	return filename, path, nil
}

// Remove deletes a stored file.
func (s *LocalFileStore) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove attachment file: %w", err)
	}
	return nil
}
