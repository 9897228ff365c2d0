// Package storage keeps uploaded images on local disk.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/sirupsen/logrus"
)

// AllowedExtensions are the accepted image file extensions
var AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// FileStore saves uploads and returns the reference stored on records
type FileStore interface {
	Save(ctx context.Context, filename string, size int64, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// LocalStore writes files under a single directory with random names
type LocalStore struct {
	dir      string
	maxBytes int64
	logger   *logrus.Logger
}

// NewLocalStore creates the upload directory if needed
func NewLocalStore(dir string, maxBytes int64, logger *logrus.Logger) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory '%s': %w", dir, err)
	}
	return &LocalStore{dir: dir, maxBytes: maxBytes, logger: logger}, nil
}

// Dir returns the directory files are written to
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save validates the file name and size, then writes r to a new file named
// after a random UUID. The returned reference is the stored file name.
func (s *LocalStore) Save(ctx context.Context, filename string, size int64, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowed(ext) {
		return "", apperror.Validation(fmt.Sprintf("file type %q is not allowed, use jpg, jpeg, png, gif or webp", ext))
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", apperror.Validation(fmt.Sprintf("file %q exceeds the %d byte limit", filename, s.maxBytes))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := uuid.NewString() + ext
	path := filepath.Join(s.dir, ref)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload '%s': %w", path, err)
	}

	reader := r
	if s.maxBytes > 0 {
		reader = io.LimitReader(r, s.maxBytes+1)
	}
	written, err := io.Copy(file, reader)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && s.maxBytes > 0 && written > s.maxBytes {
		err = apperror.Validation(fmt.Sprintf("file %q exceeds the %d byte limit", filename, s.maxBytes))
	}
	if err != nil {
		os.Remove(path)
		if apperror.KindOf(err) == apperror.KindValidationFailed {
			return "", err
		}
		return "", fmt.Errorf("failed to write upload '%s': %w", path, err)
	}

	s.logger.WithFields(logrus.Fields{
		"file":  ref,
		"bytes": written,
	}).Debug("Stored upload")

	return ref, nil
}

// Delete removes a stored file. Missing files and references outside the
// upload directory are ignored.
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if ref == "" || ref != filepath.Base(ref) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete upload '%s': %w", ref, err)
	}
	return nil
}

func allowed(ext string) bool {
	for _, e := range AllowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
