package reporting

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"retail-crm/pkg/utils"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) StageCounts(ctx context.Context, assignedTo string) (map[string]int, error) {
	q := "SELECT pipeline_stage, COUNT(*) FROM prospects"
	var args []any
	if assignedTo != "" {
		q += " WHERE assigned_to = $1"
		args = append(args, assignedTo)
	}
	q += " GROUP BY pipeline_stage"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			stage string
			n     int
		)
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, err
		}
		out[stage] = n
	}
	return out, rows.Err()
}

func (r *PostgresRepo) CountTasks(ctx context.Context, tq TaskQuery) (int, error) {
	var args utils.Args
	var where []string
	if tq.AssignedTo != "" {
		where = append(where, "assigned_to = "+args.Add(tq.AssignedTo))
	}
	if tq.Status != "" {
		where = append(where, "status = "+args.Add(string(tq.Status)))
	}
	if !tq.DueFrom.IsZero() {
		where = append(where, "due_date >= "+args.Add(tq.DueFrom))
	}
	if !tq.DueBefore.IsZero() {
		where = append(where, "due_date < "+args.Add(tq.DueBefore))
	}
	if !tq.CompletedSince.IsZero() {
		where = append(where, "completed_at >= "+args.Add(tq.CompletedSince))
	}

	q := "SELECT COUNT(*) FROM tasks"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	var n int
	err := r.db.QueryRowContext(ctx, q, args.Values()...).Scan(&n)
	return n, err
}

func (r *PostgresRepo) CountCalls(ctx context.Context, teamMemberID string, since time.Time) (int, error) {
	q := "SELECT COUNT(*) FROM calls WHERE created_at >= $1"
	args := []any{since}
	if teamMemberID != "" {
		q += " AND team_member_id = $2"
		args = append(args, teamMemberID)
	}
	var n int
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}
