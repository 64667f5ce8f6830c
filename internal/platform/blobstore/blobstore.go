// Package blobstore provides file storage for patient attachments. It
// defines the Store interface, a disk-backed implementation used by the
// server, and an in-memory implementation suitable for testing.
package blobstore

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrBlobNotFound        = errors.New("blob not found")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrExtensionNotAllowed = errors.New("file extension is not allowed")
	ErrMissingFileName     = errors.New("file name is required")
	ErrInvalidPath         = errors.New("invalid file path")
)

// MaxFileSize is the default maximum blob size in bytes (50 MB).
const MaxFileSize = 50 * 1024 * 1024

// AllowedExtensions lists the file extensions accepted for upload.
var AllowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
	".mp3":  true,
	".mp4":  true,
	".wav":  true,
	".webm": true,
	".docx": true,
	".xlsx": true,
	".pptx": true,
	".txt":  true,
}

// ValidateExtension checks the original file name and returns its
// lower-cased extension, or an error when the name is empty or the
// extension is not in the allow list.
func ValidateExtension(fileName string) (string, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", ErrMissingFileName
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !AllowedExtensions[ext] {
		return "", ErrExtensionNotAllowed
	}
	return ext, nil
}

// Store is the contract for blob storage backends. Save assigns a unique
// stored name derived from the original file's extension and returns it
// along with the number of bytes written.
type Store interface {
	Save(ctx context.Context, originalName string, content io.Reader) (storedName string, size int64, err error)
	Open(ctx context.Context, storedName string) (io.ReadCloser, error)
	Remove(ctx context.Context, storedName string) error
}
