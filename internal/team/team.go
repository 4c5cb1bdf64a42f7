// Package team exposes the sales team roster.
package team

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"retail-crm/internal/apperr"
)

type Role string

const (
	RoleRep     Role = "rep"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

type Member struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	AvatarURL *string   `json:"avatar_url"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository lists members. ListActive orders by full name.
type Repository interface {
	ListActive(ctx context.Context) ([]Member, error)
	Get(ctx context.Context, id string) (Member, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) List(ctx context.Context) ([]Member, error) {
	out, err := s.repo.ListActive(ctx)
	return out, apperr.Persistence(err)
}

func (s *Service) Get(ctx context.Context, id string) (Member, error) {
	m, err := s.repo.Get(ctx, id)
	return m, apperr.Persistence(err)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const memberColumns = `id, full_name, email, role, avatar_url, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.FullName, &m.Email, &m.Role, &m.AvatarURL, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *PostgresRepo) ListActive(ctx context.Context) ([]Member, error) {
	q := "SELECT " + memberColumns + "\nFROM team_members\nWHERE is_active = true\nORDER BY full_name ASC"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Member, error) {
	q := "SELECT " + memberColumns + "\nFROM team_members\nWHERE id = $1"
	m, err := scanMember(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Member{}, apperr.NotFound("team member " + id)
		}
		return Member{}, err
	}
	return m, nil
}

// MemoryRepo is an in-memory Repository for tests.
type MemoryRepo struct {
	mu      sync.Mutex
	members map[string]Member
}

func NewMemoryRepo(seed ...Member) *MemoryRepo {
	r := &MemoryRepo{members: make(map[string]Member)}
	for _, m := range seed {
		r.members[m.ID] = m
	}
	return r
}

func (r *MemoryRepo) ListActive(ctx context.Context) ([]Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		if m.IsActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return Member{}, apperr.NotFound("team member " + id)
	}
	return m, nil
}
