package tasks

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"retail-crm/internal/apperr"
	"retail-crm/pkg/utils"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const taskColumns = `
t.id, t.prospect_id, t.assigned_to, t.title, t.description, t.due_date,
t.priority, t.status, t.completed_at, t.created_at, t.updated_at, p.business_name`

const taskFrom = `
FROM tasks t
LEFT JOIN prospects p ON p.id = t.prospect_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		t        Task
		business sql.NullString
	)
	err := row.Scan(
		&t.ID,
		&t.ProspectID,
		&t.AssignedTo,
		&t.Title,
		&t.Description,
		&t.DueDate,
		&t.Priority,
		&t.Status,
		&t.CompletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
		&business,
	)
	if err != nil {
		return Task{}, err
	}
	if business.Valid {
		t.Prospect = &ProspectRef{BusinessName: business.String}
	}
	return t, nil
}

func (r *PostgresRepo) List(ctx context.Context, f Filter) ([]Task, error) {
	var args utils.Args
	var where []string
	if f.AssignedTo != "" {
		where = append(where, "t.assigned_to = "+args.Add(f.AssignedTo))
	}
	if f.Status != "" {
		where = append(where, "t.status = "+args.Add(string(f.Status)))
	}
	if f.Priority != "" {
		where = append(where, "t.priority = "+args.Add(string(f.Priority)))
	}
	if f.ProspectID != "" {
		where = append(where, "t.prospect_id = "+args.Add(f.ProspectID))
	}

	q := "SELECT " + taskColumns + taskFrom
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, " AND ")
	}
	q += "\nORDER BY t.due_date ASC NULLS LAST, t.created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args.Values()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Task, error) {
	q := "SELECT " + taskColumns + taskFrom + "\nWHERE t.id = $1"
	t, err := scanTask(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, apperr.NotFound("task " + id)
		}
		return Task{}, err
	}
	return t, nil
}

func (r *PostgresRepo) Create(ctx context.Context, t Task) (Task, error) {
	const q = `
INSERT INTO tasks (
  id, prospect_id, assigned_to, title, description, due_date,
  priority, status, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`
	_, err := r.db.ExecContext(ctx, q,
		t.ID,
		t.ProspectID,
		t.AssignedTo,
		t.Title,
		t.Description,
		t.DueDate,
		string(t.Priority),
		string(t.Status),
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return Task{}, apperr.ErrConflict
		}
		return Task{}, err
	}
	return t, nil
}

func (r *PostgresRepo) Update(ctx context.Context, id string, in UpdateInput, at time.Time) (Task, error) {
	var args utils.Args
	set := utils.NewSetClauses(&args)
	utils.SetIfPresent(set, "prospect_id", in.ProspectID)
	utils.SetIfPresent(set, "assigned_to", in.AssignedTo)
	utils.SetIfPresent(set, "title", in.Title)
	utils.SetIfPresent(set, "description", in.Description)
	utils.SetIfPresent(set, "due_date", in.DueDate)
	if in.Priority != nil {
		set.Set("priority", string(*in.Priority))
	}
	if in.Status != nil {
		set.Set("status", string(*in.Status))
	}
	utils.SetIfPresent(set, "completed_at", in.CompletedAt)
	set.Set("updated_at", at)

	q := "UPDATE tasks SET " + strings.Join(set.Parts(), ", ") +
		"\nWHERE id = " + args.Add(id)
	res, err := r.db.ExecContext(ctx, q, args.Values()...)
	if err != nil {
		return Task{}, err
	}
	if err := requireAffected(res, id); err != nil {
		return Task{}, err
	}
	return r.Get(ctx, id)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("task " + id)
	}
	return nil
}
