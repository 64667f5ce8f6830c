package blobstore

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore stores blobs as flat files under a root directory. Stored names
// are server-generated (uuid hex plus the original extension), so client
// supplied names never reach the filesystem.
type DiskStore struct {
	root     string
	maxBytes int64
}

// NewDiskStore creates the root directory if needed and returns a store
// enforcing the given size limit. A non-positive limit falls back to
// MaxFileSize.
func NewDiskStore(root string, maxBytes int64) (*DiskStore, error) {
	if maxBytes <= 0 {
		maxBytes = MaxFileSize
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &DiskStore{root: abs, maxBytes: maxBytes}, nil
}

// Root returns the absolute storage root directory.
func (s *DiskStore) Root() string {
	return s.root
}

// safePath joins name onto the store root, rejecting names that would
// escape it.
func (s *DiskStore) safePath(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, os.PathSeparator) || strings.Contains(name, "..") {
		return "", ErrInvalidPath
	}
	p := filepath.Join(s.root, name)
	if !strings.HasPrefix(p, s.root+string(os.PathSeparator)) {
		return "", ErrInvalidPath
	}
	return p, nil
}

func (s *DiskStore) Save(_ context.Context, originalName string, content io.Reader) (string, int64, error) {
	ext, err := ValidateExtension(originalName)
	if err != nil {
		return "", 0, err
	}

	u := uuid.New()
	storedName := hex.EncodeToString(u[:]) + ext

	path, err := s.safePath(storedName)
	if err != nil {
		return "", 0, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("creating blob file: %w", err)
	}

	// Copy at most one byte past the limit so overflow is detectable.
	written, err := io.Copy(f, io.LimitReader(content, s.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("writing blob: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return "", 0, ErrFileTooLarge
	}

	return storedName, written, nil
}

func (s *DiskStore) Open(_ context.Context, storedName string) (io.ReadCloser, error) {
	path, err := s.safePath(storedName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("opening blob: %w", err)
	}
	return f, nil
}

func (s *DiskStore) Remove(_ context.Context, storedName string) error {
	path, err := s.safePath(storedName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("removing blob: %w", err)
	}
	return nil
}
