package calls

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"retail-crm/internal/apperr"
	"retail-crm/pkg/utils"
)

// Repository is the call record store.
type Repository interface {
	Create(ctx context.Context, c Call) error
	Get(ctx context.Context, id string) (Call, error)
	GetByProviderID(ctx context.Context, providerCallID string) (Call, error)
	// Update writes every mutable column of c.
	Update(ctx context.Context, c Call) error
	List(ctx context.Context, f ListFilter) ([]Call, error)
}

// PostgresRepo stores calls in the calls table. bland_call_id carries a
// unique index.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const callColumns = `
c.id, c.prospect_id, c.team_member_id, c.bland_call_id, c.direction, c.status,
c.duration_seconds, c.recording_url, c.transcript, c.summary, c.notes,
c.sentiment, c.outcome, c.started_at, c.ended_at, c.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanCall reads callColumns followed by the joined prospect columns
// (business_name, phone, email).
func scanCall(row rowScanner) (Call, error) {
	var (
		c          Call
		transcript []byte
		name       sql.NullString
		phone      *string
		email      *string
	)
	err := row.Scan(
		&c.ID,
		&c.ProspectID,
		&c.TeamMemberID,
		&c.BlandCallID,
		&c.Direction,
		&c.Status,
		&c.DurationSeconds,
		&c.RecordingURL,
		&transcript,
		&c.Summary,
		&c.Notes,
		&c.Sentiment,
		&c.Outcome,
		&c.StartedAt,
		&c.EndedAt,
		&c.CreatedAt,
		&name,
		&phone,
		&email,
	)
	if err != nil {
		return Call{}, err
	}
	if len(transcript) > 0 {
		c.Transcript = json.RawMessage(transcript)
	}
	if name.Valid {
		c.Prospect = &ProspectRef{BusinessName: name.String, Phone: phone, Email: email}
	}
	return c, nil
}

const callSelect = "SELECT " + callColumns + `,
p.business_name, p.phone, p.email
FROM calls c
LEFT JOIN prospects p ON p.id = c.prospect_id`

func (r *PostgresRepo) Create(ctx context.Context, c Call) error {
	const q = `
INSERT INTO calls (
  id, prospect_id, team_member_id, bland_call_id, direction, status,
  duration_seconds, recording_url, transcript, summary, notes,
  sentiment, outcome, started_at, ended_at, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.ProspectID,
		c.TeamMemberID,
		c.BlandCallID,
		string(c.Direction),
		string(c.Status),
		c.DurationSeconds,
		c.RecordingURL,
		nullableJSON(c.Transcript),
		c.Summary,
		c.Notes,
		c.Sentiment,
		c.Outcome,
		c.StartedAt,
		c.EndedAt,
		c.CreatedAt,
	)
	if utils.IsUniqueViolation(err) {
		return apperr.ErrConflict
	}
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Call, error) {
	c, err := scanCall(r.db.QueryRowContext(ctx, callSelect+"\nWHERE c.id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Call{}, apperr.NotFound("call " + id)
		}
		return Call{}, err
	}
	return c, nil
}

func (r *PostgresRepo) GetByProviderID(ctx context.Context, providerCallID string) (Call, error) {
	c, err := scanCall(r.db.QueryRowContext(ctx, callSelect+"\nWHERE c.bland_call_id = $1", providerCallID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Call{}, apperr.NotFound("call with provider id " + providerCallID)
		}
		return Call{}, err
	}
	return c, nil
}

func (r *PostgresRepo) Update(ctx context.Context, c Call) error {
	const q = `
UPDATE calls SET
  status = $2,
  duration_seconds = $3,
  recording_url = $4,
  transcript = $5,
  summary = $6,
  notes = $7,
  sentiment = $8,
  outcome = $9,
  started_at = $10,
  ended_at = $11
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		c.ID,
		string(c.Status),
		c.DurationSeconds,
		c.RecordingURL,
		nullableJSON(c.Transcript),
		c.Summary,
		c.Notes,
		c.Sentiment,
		c.Outcome,
		c.StartedAt,
		c.EndedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("call " + c.ID)
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter) ([]Call, error) {
	var args utils.Args
	var where []string
	if f.ProspectID != "" {
		where = append(where, "c.prospect_id = "+args.Add(f.ProspectID))
	}
	if f.Status != "" {
		where = append(where, "c.status = "+args.Add(string(f.Status)))
	}
	if f.TeamMemberID != "" {
		where = append(where, "c.team_member_id = "+args.Add(f.TeamMemberID))
	}
	q := callSelect
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, " AND ")
	}
	q += "\nORDER BY c.created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args.Values()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Call, 0)
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		// List responses carry name and phone only.
		if c.Prospect != nil {
			c.Prospect.Email = nil
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
