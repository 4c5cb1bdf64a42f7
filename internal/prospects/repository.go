package prospects

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"retail-crm/internal/apperr"
	"retail-crm/pkg/utils"
)

// PostgresRepo stores prospects in the prospects table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const prospectColumns = `
id, business_name, contact_first_name, contact_last_name, email, phone, website,
address, city, state, zip, store_type, pipeline_stage, assigned_to, source,
estimated_monthly_volume, notes, last_contacted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProspect(row rowScanner) (Prospect, error) {
	var p Prospect
	err := row.Scan(
		&p.ID,
		&p.BusinessName,
		&p.ContactFirstName,
		&p.ContactLastName,
		&p.Email,
		&p.Phone,
		&p.Website,
		&p.Address,
		&p.City,
		&p.State,
		&p.Zip,
		&p.StoreType,
		&p.PipelineStage,
		&p.AssignedTo,
		&p.Source,
		&p.EstimatedMonthlyVolume,
		&p.Notes,
		&p.LastContactedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *PostgresRepo) List(ctx context.Context, f Filter) ([]Prospect, error) {
	var args utils.Args
	var where []string
	if f.Stage != "" {
		where = append(where, "pipeline_stage = "+args.Add(string(f.Stage)))
	}
	if f.StoreType != "" {
		where = append(where, "store_type = "+args.Add(string(f.StoreType)))
	}
	if f.AssignedTo != "" {
		where = append(where, "assigned_to = "+args.Add(f.AssignedTo))
	}
	if f.Search != "" {
		ph := args.Add("%" + f.Search + "%")
		where = append(where, "(business_name ILIKE "+ph+
			" OR contact_first_name ILIKE "+ph+
			" OR contact_last_name ILIKE "+ph+
			" OR email ILIKE "+ph+
			" OR city ILIKE "+ph+")")
	}

	q := "SELECT " + prospectColumns + "\nFROM prospects"
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, " AND ")
	}
	// SortBy is whitelisted by the service.
	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}
	q += "\nORDER BY " + f.SortBy + " " + dir + " NULLS LAST"

	rows, err := r.db.QueryContext(ctx, q, args.Values()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Prospect, 0)
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Prospect, error) {
	q := "SELECT " + prospectColumns + "\nFROM prospects\nWHERE id = $1"
	p, err := scanProspect(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Prospect{}, apperr.NotFound("prospect " + id)
		}
		return Prospect{}, err
	}
	return p, nil
}

func (r *PostgresRepo) Create(ctx context.Context, p Prospect) (Prospect, error) {
	q := `
INSERT INTO prospects (
  id, business_name, contact_first_name, contact_last_name, email, phone, website,
  address, city, state, zip, store_type, pipeline_stage, assigned_to, source,
  estimated_monthly_volume, notes, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
RETURNING ` + prospectColumns

	out, err := scanProspect(r.db.QueryRowContext(ctx, q,
		p.ID,
		p.BusinessName,
		p.ContactFirstName,
		p.ContactLastName,
		p.Email,
		p.Phone,
		p.Website,
		p.Address,
		p.City,
		p.State,
		p.Zip,
		string(p.StoreType),
		string(p.PipelineStage),
		p.AssignedTo,
		string(p.Source),
		p.EstimatedMonthlyVolume,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	))
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return Prospect{}, apperr.ErrConflict
		}
		return Prospect{}, err
	}
	return out, nil
}

func (r *PostgresRepo) Update(ctx context.Context, id string, in UpdateInput, at time.Time) (Prospect, error) {
	var args utils.Args
	set := utils.NewSetClauses(&args)
	utils.SetIfPresent(set, "business_name", in.BusinessName)
	utils.SetIfPresent(set, "contact_first_name", in.ContactFirstName)
	utils.SetIfPresent(set, "contact_last_name", in.ContactLastName)
	utils.SetIfPresent(set, "email", in.Email)
	utils.SetIfPresent(set, "phone", in.Phone)
	utils.SetIfPresent(set, "website", in.Website)
	utils.SetIfPresent(set, "address", in.Address)
	utils.SetIfPresent(set, "city", in.City)
	utils.SetIfPresent(set, "state", in.State)
	utils.SetIfPresent(set, "zip", in.Zip)
	if in.StoreType != nil {
		set.Set("store_type", string(*in.StoreType))
	}
	if in.PipelineStage != nil {
		set.Set("pipeline_stage", string(*in.PipelineStage))
	}
	utils.SetIfPresent(set, "assigned_to", in.AssignedTo)
	if in.Source != nil {
		set.Set("source", string(*in.Source))
	}
	utils.SetIfPresent(set, "estimated_monthly_volume", in.EstimatedMonthlyVolume)
	utils.SetIfPresent(set, "notes", in.Notes)
	set.Set("updated_at", at)

	q := "UPDATE prospects SET " + strings.Join(set.Parts(), ", ") +
		"\nWHERE id = " + args.Add(id) +
		"\nRETURNING " + prospectColumns

	p, err := scanProspect(r.db.QueryRowContext(ctx, q, args.Values()...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Prospect{}, apperr.NotFound("prospect " + id)
		}
		return Prospect{}, err
	}
	return p, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM prospects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func (r *PostgresRepo) SetStage(ctx context.Context, id string, stage Stage, at time.Time) (Prospect, error) {
	q := `
UPDATE prospects
SET pipeline_stage = $2, updated_at = $3
WHERE id = $1
RETURNING ` + prospectColumns

	p, err := scanProspect(r.db.QueryRowContext(ctx, q, id, string(stage), at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Prospect{}, apperr.NotFound("prospect " + id)
		}
		return Prospect{}, err
	}
	return p, nil
}

func (r *PostgresRepo) TouchLastContacted(ctx context.Context, id string, at time.Time) error {
	const q = `
UPDATE prospects
SET last_contacted_at = $2, updated_at = $2
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, id, at)
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
		return apperr.NotFound("prospect " + id)
	}
	return nil
}
