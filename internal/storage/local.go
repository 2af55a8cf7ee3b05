package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend stores objects as files under a single directory.
type LocalBackend struct {
	dir string
}

func NewLocalBackend(dir string) (*LocalBackend, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("upload directory is required")
	}
	return &LocalBackend{dir: dir}, nil
}

// EnsureBucket creates the upload directory if it does not exist.
func (l *LocalBackend) EnsureBucket(_ context.Context) error {
	return os.MkdirAll(l.dir, 0o755)
}

// Put writes an object to disk. The key is always a generated name, never
// caller input, so no path sanitisation is needed beyond Base.
func (l *LocalBackend) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	f, err := os.Create(filepath.Join(l.dir, filepath.Base(key)))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Get opens a stored object for reading.
func (l *LocalBackend) Get(_ context.Context, key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(l.dir, filepath.Base(key)))
}

// Delete removes a stored object.
func (l *LocalBackend) Delete(_ context.Context, key string) error {
	return os.Remove(filepath.Join(l.dir, filepath.Base(key)))
}

// Bucket returns the upload directory.
func (l *LocalBackend) Bucket() string {
	return l.dir
}
