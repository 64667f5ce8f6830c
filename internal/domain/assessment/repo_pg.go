package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fonoapp/suite/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo creates a Postgres-backed assessment repository.
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

const templateCols = `id, name, schema, created_at, updated_at`

func scanTemplate(row pgx.Row) (*Template, error) {
	var t Template
	err := row.Scan(&t.ID, &t.Name, &t.Schema, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repoPG) CreateTemplate(ctx context.Context, t *Template) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO assessment_templates (name, schema)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`,
		t.Name, t.Schema,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("assessment template create: %w", err)
	}
	return nil
}

func (r *repoPG) GetTemplate(ctx context.Context, id int64) (*Template, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+templateCols+` FROM assessment_templates WHERE id = $1`, id)
	return scanTemplate(row)
}

func (r *repoPG) UpdateTemplate(ctx context.Context, t *Template) error {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE assessment_templates
		SET name = $2, schema = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		t.ID, t.Name, t.Schema,
	)
	if err := row.Scan(&t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("assessment template update: %w", err)
	}
	return nil
}

func (r *repoPG) ListTemplates(ctx context.Context) ([]*Template, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+templateCols+` FROM assessment_templates ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("assessment template list: %w", err)
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *repoPG) CreateResult(ctx context.Context, res *Result) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO assessment_results (template_id, patient_id, responses, score)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		res.TemplateID, res.PatientID, res.Responses, res.Score,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err, "template") {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("assessment result create: %w", err)
	}
	return nil
}

func (r *repoPG) ListResultsByPatient(ctx context.Context, patientID int64) ([]*Result, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, template_id, patient_id, responses, score, created_at, updated_at
		FROM assessment_results
		WHERE patient_id = $1
		ORDER BY id DESC`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("assessment result list: %w", err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		var res Result
		err := rows.Scan(&res.ID, &res.TemplateID, &res.PatientID,
			&res.Responses, &res.Score, &res.CreatedAt, &res.UpdatedAt)
		if err != nil {
			return nil, err
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}

func isForeignKeyViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == "23503" &&
		strings.Contains(pgErr.ConstraintName, constraint)
}
