package plan

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

// NewRepo creates a Postgres-backed plan repository.
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

const planCols = `id, patient_id, title, goals, status, created_at`

func scanPlan(row pgx.Row) (*TreatmentPlan, error) {
	var p TreatmentPlan
	err := row.Scan(&p.ID, &p.PatientID, &p.Title, &p.Goals, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) CreatePlan(ctx context.Context, p *TreatmentPlan) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO treatment_plans (patient_id, title, goals, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		p.PatientID, p.Title, p.Goals, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("plan create: %w", err)
	}
	return nil
}

func (r *repoPG) GetPlan(ctx context.Context, id int64) (*TreatmentPlan, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM treatment_plans WHERE id = $1`, id)
	return scanPlan(row)
}

func (r *repoPG) UpdatePlan(ctx context.Context, p *TreatmentPlan) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_plans
		SET patient_id = $2, title = $3, goals = $4, status = $5
		WHERE id = $1`,
		p.ID, p.PatientID, p.Title, p.Goals, p.Status,
	)
	if err != nil {
		return fmt.Errorf("plan update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (r *repoPG) DeletePlan(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM treatment_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("plan delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (r *repoPG) ListPlansByPatient(ctx context.Context, patientID int64, params ListParams) ([]*TreatmentPlan, int, error) {
	q := r.conn(ctx)

	var total int
	err := q.QueryRow(ctx,
		`SELECT count(*) FROM treatment_plans WHERE patient_id = $1`, patientID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("plan count: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT `+planCols+` FROM treatment_plans
		WHERE patient_id = $1
		ORDER BY id `+orderDir(params.Order)+`
		LIMIT $2 OFFSET $3`,
		patientID, params.Limit, params.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("plan list: %w", err)
	}
	defer rows.Close()

	var plans []*TreatmentPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, p)
	}
	return plans, total, rows.Err()
}

func (r *repoPG) CreateLog(ctx context.Context, l *SessionLog) error {
	if l.Progress == nil {
		l.Progress = map[string]float64{}
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO session_logs (plan_id, date, progress, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		l.PlanID, l.Date, l.Progress, l.Notes,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("session log create: %w", err)
	}
	return nil
}

func (r *repoPG) ListLogs(ctx context.Context, planID int64, params ListParams) ([]*SessionLog, int, error) {
	q := r.conn(ctx)

	var total int
	err := q.QueryRow(ctx,
		`SELECT count(*) FROM session_logs WHERE plan_id = $1`, planID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("session log count: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT id, plan_id, date, progress, notes FROM session_logs
		WHERE plan_id = $1
		ORDER BY id `+orderDir(params.Order)+`
		LIMIT $2 OFFSET $3`,
		planID, params.Limit, params.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("session log list: %w", err)
	}
	defer rows.Close()

	var logs []*SessionLog
	for rows.Next() {
		var l SessionLog
		if err := rows.Scan(&l.ID, &l.PlanID, &l.Date, &l.Progress, &l.Notes); err != nil {
			return nil, 0, err
		}
		logs = append(logs, &l)
	}
	return logs, total, rows.Err()
}

// orderDir whitelists the sort direction so it is safe to interpolate.
func orderDir(order string) string {
	if order == "desc" {
		return "DESC"
	}
	return "ASC"
}
