package storage

import (
	"context"
	"encoding/hex"
	"io"
	"path/filepath"
	"strings"

	"github.com/campussync/complaint-management/internal"
	"github.com/google/uuid"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Store wraps an ObjectStorage backend with upload policy: a size cap, an
// extension allow-list, and unguessable generated object names.
type Store struct {
	backend    ObjectStorage
	maxBytes   int64
	allowedExt map[string]struct{}
}

func NewStore(backend ObjectStorage, maxBytes int64, allowedExtensions []string) *Store {
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))] = struct{}{}
	}
	return &Store{
		backend:    backend,
		maxBytes:   maxBytes,
		allowedExt: allowed,
	}
}

// SaveUpload validates the upload against the store policy and writes it
// under a freshly generated name, which it returns. The caller's filename
// contributes only its extension.
func (s *Store) SaveUpload(ctx context.Context, originalName string, r io.Reader, size int64) (string, error) {
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", internal.ErrUploadTooLarge
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if _, ok := s.allowedExt[ext]; !ok {
		return "", internal.ErrUploadExtension
	}

	name := newObjectName(ext)
	if err := s.backend.Put(ctx, name, r, size, contentTypeFor(ext)); err != nil {
		return "", err
	}
	return name, nil
}

// Open returns a reader for a stored object.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, name)
}

// Remove deletes a stored object.
func (s *Store) Remove(ctx context.Context, name string) error {
	return s.backend.Delete(ctx, name)
}

// EnsureBucket prepares the backing location at startup.
func (s *Store) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// MaxBytes returns the configured upload size cap.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

func newObjectName(ext string) string {
	u := uuid.New()
	return hex.EncodeToString(u[:]) + "." + ext
}

func contentTypeFor(ext string) string {
	switch ext {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
