package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fonoapp/suite/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo creates a Postgres-backed media repository.
func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

const fileCols = `id, patient_id, path, stored_name, kind, created_at`

func scanFile(row pgx.Row) (*File, error) {
	var f File
	err := row.Scan(&f.ID, &f.PatientID, &f.Path, &f.StoredName, &f.Kind, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *repoPG) Create(ctx context.Context, f *File) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO media_files (patient_id, path, stored_name, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		f.PatientID, f.Path, f.StoredName, f.Kind,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("media create: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*File, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+fileCols+` FROM media_files WHERE id = $1`, id)
	return scanFile(row)
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM media_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("media delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int64) ([]*File, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+fileCols+` FROM media_files
		WHERE patient_id = $1
		ORDER BY id DESC`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("media list: %w", err)
	}
	defer rows.Close()

	var files []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
