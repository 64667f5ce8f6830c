package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fonoapp/suite/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo creates a Postgres-backed patient repository.
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

const patientCols = `id, first_name, last_name, birth_date, diagnosis, notes,
	cedula, cedula_norm, user_id, created_at, updated_at, deleted_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var birth *time.Time
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &birth, &p.Diagnosis, &p.Notes,
		&p.Cedula, &p.CedulaNorm, &p.UserID, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if birth != nil {
		p.BirthDate = &Date{*birth}
	}
	return &p, nil
}

// isCedulaUniqueViolation reports whether err is the unique-index backstop
// firing for cedula_norm.
func isCedulaUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == "23505" &&
		strings.Contains(pgErr.ConstraintName, "cedula")
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	var birth *time.Time
	if p.BirthDate != nil {
		birth = &p.BirthDate.Time
	}

	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (first_name, last_name, birth_date, diagnosis, notes, cedula, cedula_norm, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		p.FirstName, p.LastName, birth, p.Diagnosis, p.Notes, p.Cedula, p.CedulaNorm, p.UserID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isCedulaUniqueViolation(err) {
			return ErrCedulaConflict
		}
		return fmt.Errorf("patient create: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id)
	return scanPatient(row)
}

func (r *repoPG) GetByCedulaNorm(ctx context.Context, norm string) (*Patient, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE cedula_norm = $1 AND deleted_at IS NULL`, norm)
	return scanPatient(row)
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	var birth *time.Time
	if p.BirthDate != nil {
		birth = &p.BirthDate.Time
	}

	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patients
		SET first_name = $2, last_name = $3, birth_date = $4, diagnosis = $5,
			notes = $6, cedula = $7, cedula_norm = $8, user_id = $9, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`,
		p.ID, p.FirstName, p.LastName, birth, p.Diagnosis, p.Notes, p.Cedula, p.CedulaNorm, p.UserID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if isCedulaUniqueViolation(err) {
			return ErrCedulaConflict
		}
		return fmt.Errorf("patient update: %w", err)
	}
	return nil
}

func (r *repoPG) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET deleted_at = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("patient soft delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Restore(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET deleted_at = NULL, updated_at = now()
		WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return fmt.Errorf("patient restore: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) HardDelete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("patient hard delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) CedulaExists(ctx context.Context, norm string, excludeID int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM patients WHERE cedula_norm = $1 AND id <> $2
		)`, norm, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("cedula exists: %w", err)
	}
	return exists, nil
}

// buildFilters translates ListParams into a WHERE clause and its arguments.
func buildFilters(params ListParams) (string, []interface{}) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !params.IncludeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}

	if q := strings.TrimSpace(params.Query); q != "" {
		p := arg("%" + q + "%")
		conds = append(conds, fmt.Sprintf(
			"(first_name ILIKE %[1]s OR last_name ILIKE %[1]s OR diagnosis ILIKE %[1]s OR cedula ILIKE %[1]s)", p))
	}

	if d := strings.TrimSpace(params.Diagnosis); d != "" {
		conds = append(conds, fmt.Sprintf("diagnosis ILIKE %s", arg("%"+d+"%")))
	}

	if c := strings.TrimSpace(params.Cedula); c != "" {
		if norm := NormalizeCedula(c); norm != "" {
			conds = append(conds, fmt.Sprintf(
				"(cedula_norm = %s OR cedula ILIKE %s)", arg(norm), arg("%"+c+"%")))
		}
	}

	if params.BirthFrom != nil {
		conds = append(conds, fmt.Sprintf("birth_date >= %s", arg(*params.BirthFrom)))
	}
	if params.BirthTo != nil {
		conds = append(conds, fmt.Sprintf("birth_date <= %s", arg(*params.BirthTo)))
	}
	if params.CreatedFrom != nil {
		conds = append(conds, fmt.Sprintf("created_at >= %s", arg(*params.CreatedFrom)))
	}
	if params.CreatedTo != nil {
		conds = append(conds, fmt.Sprintf("created_at <= %s", arg(*params.CreatedTo)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *repoPG) List(ctx context.Context, params ListParams) ([]*Patient, int, error) {
	params.normalize()
	where, args := buildFilters(params)

	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM patients`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("patient count: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM patients%s ORDER BY %s LIMIT %d OFFSET %d`,
		patientCols, where, params.OrderClause(), params.Limit, params.Offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("patient list: %w", err)
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}
