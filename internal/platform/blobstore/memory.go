package blobstore

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"sync"

	"github.com/google/uuid"
)

// MemStore is a thread-safe, in-memory Store for tests.
type MemStore struct {
	mu       sync.RWMutex
	blobs    map[string][]byte
	maxBytes int64
}

// NewMemStore returns a ready-to-use MemStore. A non-positive limit falls
// back to MaxFileSize.
func NewMemStore(maxBytes int64) *MemStore {
	if maxBytes <= 0 {
		maxBytes = MaxFileSize
	}
	return &MemStore{
		blobs:    make(map[string][]byte),
		maxBytes: maxBytes,
	}
}

func (s *MemStore) Save(_ context.Context, originalName string, content io.Reader) (string, int64, error) {
	ext, err := ValidateExtension(originalName)
	if err != nil {
		return "", 0, err
	}

	data, err := io.ReadAll(io.LimitReader(content, s.maxBytes+1))
	if err != nil {
		return "", 0, err
	}
	if int64(len(data)) > s.maxBytes {
		return "", 0, ErrFileTooLarge
	}

	u := uuid.New()
	storedName := hex.EncodeToString(u[:]) + ext

	s.mu.Lock()
	s.blobs[storedName] = data
	s.mu.Unlock()

	return storedName, int64(len(data)), nil
}

func (s *MemStore) Open(_ context.Context, storedName string) (io.ReadCloser, error) {
	s.mu.RLock()
	data, ok := s.blobs[storedName]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemStore) Remove(_ context.Context, storedName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[storedName]; !ok {
		return ErrBlobNotFound
	}
	delete(s.blobs, storedName)
	return nil
}

// Len reports the number of stored blobs.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
