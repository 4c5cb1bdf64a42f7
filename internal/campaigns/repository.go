package campaigns

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"retail-crm/internal/apperr"
	"retail-crm/pkg/utils"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const campaignColumns = `
id, name, description, pathway_id, status, created_by,
total_calls, completed_calls, successful_calls, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (Campaign, error) {
	var c Campaign
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.PathwayID,
		&c.Status,
		&c.CreatedBy,
		&c.TotalCalls,
		&c.CompletedCalls,
		&c.SuccessfulCalls,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *PostgresRepo) List(ctx context.Context) ([]Campaign, error) {
	q := "SELECT " + campaignColumns + "\nFROM call_campaigns\nORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Campaign, error) {
	q := "SELECT " + campaignColumns + "\nFROM call_campaigns\nWHERE id = $1"
	c, err := scanCampaign(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Campaign{}, apperr.NotFound("campaign " + id)
		}
		return Campaign{}, err
	}
	return c, nil
}

func (r *PostgresRepo) Members(ctx context.Context, campaignID string, status MemberStatus) ([]Member, error) {
	q := `
SELECT cp.id, cp.campaign_id, cp.prospect_id, cp.status, cp.call_id, cp.created_at,
       p.business_name, p.phone, p.pipeline_stage,
       c.status, c.outcome, c.duration_seconds
FROM campaign_prospects cp
LEFT JOIN prospects p ON p.id = cp.prospect_id
LEFT JOIN calls c ON c.id = cp.call_id
WHERE cp.campaign_id = $1`
	args := []any{campaignID}
	if status != "" {
		q += " AND cp.status = $2"
		args = append(args, string(status))
	}
	q += "\nORDER BY cp.created_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Member, 0)
	for rows.Next() {
		var (
			m            Member
			business     sql.NullString
			phone        sql.NullString
			stage        sql.NullString
			callStatus   sql.NullString
			callOutcome  sql.NullString
			callDuration sql.NullInt64
		)
		if err := rows.Scan(
			&m.ID, &m.CampaignID, &m.ProspectID, &m.Status, &m.CallID, &m.CreatedAt,
			&business, &phone, &stage,
			&callStatus, &callOutcome, &callDuration,
		); err != nil {
			return nil, err
		}
		if business.Valid {
			m.Prospect = &ProspectRef{BusinessName: business.String, PipelineStage: stage.String}
			if phone.Valid {
				v := phone.String
				m.Prospect.Phone = &v
			}
		}
		if callStatus.Valid {
			m.Call = &CallRef{Status: callStatus.String}
			if callOutcome.Valid {
				v := callOutcome.String
				m.Call.Outcome = &v
			}
			if callDuration.Valid {
				v := int(callDuration.Int64)
				m.Call.DurationSeconds = &v
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Create(ctx context.Context, c Campaign, members []Member) (Campaign, error) {
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const insertCampaign = `
INSERT INTO call_campaigns (
  id, name, description, pathway_id, status, created_by,
  total_calls, completed_calls, successful_calls, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`
		if _, err := tx.ExecContext(ctx, insertCampaign,
			c.ID, c.Name, c.Description, c.PathwayID, string(c.Status), c.CreatedBy,
			c.TotalCalls, c.CompletedCalls, c.SuccessfulCalls, c.CreatedAt, c.UpdatedAt,
		); err != nil {
			return err
		}

		const insertMember = `
INSERT INTO campaign_prospects (id, campaign_id, prospect_id, status, created_at)
VALUES ($1,$2,$3,$4,$5)
`
		for _, m := range members {
			if _, err := tx.ExecContext(ctx, insertMember, m.ID, m.CampaignID, m.ProspectID, string(m.Status), m.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return Campaign{}, apperr.ErrConflict
		}
		return Campaign{}, err
	}
	return c, nil
}

func (r *PostgresRepo) SetStatus(ctx context.Context, id string, status Status, at time.Time) (Campaign, error) {
	q := `
UPDATE call_campaigns
SET status = $2, updated_at = $3
WHERE id = $1
RETURNING ` + campaignColumns

	c, err := scanCampaign(r.db.QueryRowContext(ctx, q, id, string(status), at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Campaign{}, apperr.NotFound("campaign " + id)
		}
		return Campaign{}, err
	}
	return c, nil
}

func (r *PostgresRepo) MarkMembers(ctx context.Context, memberIDs []string, status MemberStatus) error {
	if len(memberIDs) == 0 {
		return nil
	}
	const q = `UPDATE campaign_prospects SET status = $1 WHERE id = ANY($2)`
	_, err := r.db.ExecContext(ctx, q, string(status), memberIDs)
	return err
}
