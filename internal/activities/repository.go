package activities

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresRepo appends to the activities table. The table is INSERT-only;
// nothing in this package updates or deletes rows.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, a Activity) error {
	meta, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	const q = `
INSERT INTO activities (id, prospect_id, team_member_id, type, title, description, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err = r.db.ExecContext(ctx, q,
		a.ID,
		a.ProspectID,
		a.TeamMemberID,
		string(a.Type),
		a.Title,
		a.Description,
		meta,
		a.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) Recent(ctx context.Context, limit int) ([]Activity, error) {
	const q = `
SELECT a.id, a.prospect_id, a.team_member_id, a.type, a.title, a.description, a.metadata, a.created_at,
       p.business_name
FROM activities a
LEFT JOIN prospects p ON p.id = a.prospect_id
ORDER BY a.created_at DESC
LIMIT $1
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Activity, 0, limit)
	for rows.Next() {
		var (
			a    Activity
			meta []byte
			name sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.ProspectID, &a.TeamMemberID, &a.Type, &a.Title, &a.Description, &meta, &a.CreatedAt, &name); err != nil {
			return nil, err
		}
		if err := decodeMetadata(meta, &a); err != nil {
			return nil, err
		}
		if name.Valid {
			a.Prospect = &ProspectRef{BusinessName: name.String}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ByProspect(ctx context.Context, prospectID string) ([]Activity, error) {
	const q = `
SELECT id, prospect_id, team_member_id, type, title, description, metadata, created_at
FROM activities
WHERE prospect_id = $1
ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, prospectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Activity, 0)
	for rows.Next() {
		var (
			a    Activity
			meta []byte
		)
		if err := rows.Scan(&a.ID, &a.ProspectID, &a.TeamMemberID, &a.Type, &a.Title, &a.Description, &meta, &a.CreatedAt); err != nil {
			return nil, err
		}
		if err := decodeMetadata(meta, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func decodeMetadata(raw []byte, a *Activity) error {
	a.Metadata = map[string]any{}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &a.Metadata); err != nil {
		return fmt.Errorf("decode metadata for activity %s: %w", a.ID, err)
	}
	return nil
}
