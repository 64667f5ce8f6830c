package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fonoapp/suite/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo creates a Postgres-backed assignment repository.
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

const assignmentCols = `id, patient_id, title, description, due_at, status, completed_at, created_at`

func scanAssignment(row pgx.Row) (*Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.PatientID, &a.Title, &a.Description,
		&a.DueAt, &a.Status, &a.CompletedAt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Assignment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO assignments (patient_id, title, description, due_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		a.PatientID, a.Title, a.Description, a.DueAt, a.Status,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("assignment create: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Assignment, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+assignmentCols+` FROM assignments WHERE id = $1`, id)
	return scanAssignment(row)
}

func (r *repoPG) MarkDone(ctx context.Context, id int64, completedAt time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE assignments
		SET status = $2, completed_at = $3
		WHERE id = $1`,
		id, StatusDone, completedAt,
	)
	if err != nil {
		return fmt.Errorf("assignment mark done: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Assignment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+assignmentCols+` FROM assignments
		WHERE patient_id = $1
		ORDER BY id DESC`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("assignment list: %w", err)
	}
	defer rows.Close()

	var assignments []*Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
