package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestValidateExtension(t *testing.T) {
	tests := []struct {
		name    string
		wantExt string
		wantErr error
	}{
		{"report.pdf", ".pdf", nil},
		{"photo.JPG", ".jpg", nil},
		{"session.webm", ".webm", nil},
		{"notes.txt", ".txt", nil},
		{"malware.exe", "", ErrExtensionNotAllowed},
		{"archive.zip", "", ErrExtensionNotAllowed},
		{"noextension", "", ErrExtensionNotAllowed},
		{"", "", ErrMissingFileName},
		{"   ", "", ErrMissingFileName},
	}

	for _, tt := range tests {
		ext, err := ValidateExtension(tt.name)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidateExtension(%q) error = %v, want %v", tt.name, err, tt.wantErr)
		}
		if ext != tt.wantExt {
			t.Errorf("ValidateExtension(%q) ext = %q, want %q", tt.name, ext, tt.wantExt)
		}
	}
}

func TestDiskStore_SaveOpenRemove(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	name, size, err := store.Save(ctx, "audiogram.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len("pdf-bytes")) {
		t.Errorf("expected size %d, got %d", len("pdf-bytes"), size)
	}
	if !strings.HasSuffix(name, ".pdf") {
		t.Errorf("expected stored name with .pdf suffix, got %q", name)
	}
	if strings.Contains(name, "audiogram") {
		t.Errorf("stored name must not contain the client name, got %q", name)
	}

	rc, err := store.Open(ctx, name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "pdf-bytes" {
		t.Errorf("expected pdf-bytes, got %q", data)
	}

	if err := store.Remove(ctx, name); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Open(ctx, name); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound after remove, got %v", err)
	}
}

func TestDiskStore_RejectsDisallowedExtension(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	_, _, err = store.Save(context.Background(), "script.sh", strings.NewReader("#!/bin/sh"))
	if !errors.Is(err, ErrExtensionNotAllowed) {
		t.Errorf("expected ErrExtensionNotAllowed, got %v", err)
	}
}

func TestDiskStore_EnforcesSizeLimit(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 16)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	big := bytes.Repeat([]byte("x"), 64)
	_, _, err = store.Save(context.Background(), "big.txt", bytes.NewReader(big))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}

	small := []byte("tiny")
	if _, _, err := store.Save(context.Background(), "small.txt", bytes.NewReader(small)); err != nil {
		t.Errorf("expected small file to save, got %v", err)
	}
}

func TestDiskStore_RejectsTraversalNames(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	for _, name := range []string{"../escape.txt", "a/../../b.txt", "", "dir/file.txt"} {
		if _, err := store.Open(ctx, name); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Open(%q): expected ErrInvalidPath, got %v", name, err)
		}
		if err := store.Remove(ctx, name); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Remove(%q): expected ErrInvalidPath, got %v", name, err)
		}
	}
}

func TestMemStore_SaveOpenRemove(t *testing.T) {
	store := NewMemStore(0)
	ctx := context.Background()

	name, size, err := store.Save(ctx, "clip.mp3", strings.NewReader("audio"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != 5 {
		t.Errorf("expected size 5, got %d", size)
	}

	rc, err := store.Open(ctx, name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "audio" {
		t.Errorf("expected audio, got %q", data)
	}

	if err := store.Remove(ctx, name); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d blobs", store.Len())
	}
	if err := store.Remove(ctx, name); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestMemStore_EnforcesSizeLimit(t *testing.T) {
	store := NewMemStore(4)
	_, _, err := store.Save(context.Background(), "big.txt", strings.NewReader("too large"))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}
