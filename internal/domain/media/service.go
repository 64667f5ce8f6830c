package media

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/fonoapp/suite/internal/platform/blobstore"
)

// Service stores uploaded files through the blobstore and keeps their
// metadata rows in sync with the blobs.
type Service struct {
	repo  Repository
	store blobstore.Store
}

func NewService(repo Repository, store blobstore.Store) *Service {
	return &Service{repo: repo, store: store}
}

// Upload validates and stores one file, then records its metadata. When
// the metadata write fails the stored blob is removed so no orphan is
// left behind.
func (s *Service) Upload(ctx context.Context, patientID *int64, originalName string, content io.Reader) (*File, error) {
	storedName, _, err := s.store.Save(ctx, originalName, content)
	if err != nil {
		return nil, err
	}

	f := &File{
		PatientID:  patientID,
		Path:       "/media/" + storedName,
		StoredName: storedName,
		Kind:       kindOf(strings.ToLower(filepath.Ext(storedName))),
	}
	if err := s.repo.Create(ctx, f); err != nil {
		_ = s.store.Remove(ctx, storedName)
		return nil, err
	}
	return f, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

// Open returns the blob content for a stored file.
func (s *Service) Open(ctx context.Context, id int64) (*File, io.ReadCloser, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, f.StoredName)
	if err != nil {
		return nil, nil, err
	}
	return f, rc, nil
}

// Delete removes the metadata row first, then the blob. A missing blob
// is not an error once the row is gone.
func (s *Service) Delete(ctx context.Context, id int64) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, f.ID); err != nil {
		return err
	}
	_ = s.store.Remove(ctx, f.StoredName)
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]*File, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
