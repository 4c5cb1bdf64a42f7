package prospects

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"retail-crm/internal/apperr"
)

// MemoryRepo is an in-memory Repository for tests and local runs without Postgres.
type MemoryRepo struct {
	mu        sync.Mutex
	prospects map[string]Prospect

	stageWrites int
}

func NewMemoryRepo(seed ...Prospect) *MemoryRepo {
	r := &MemoryRepo{prospects: make(map[string]Prospect)}
	for _, p := range seed {
		r.prospects[p.ID] = p
	}
	return r
}

// StageWrites reports how many SetStage calls reached the store.
func (r *MemoryRepo) StageWrites() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stageWrites
}

func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]Prospect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	needle := strings.ToLower(f.Search)
	out := make([]Prospect, 0, len(r.prospects))
	for _, p := range r.prospects {
		if f.Stage != "" && p.PipelineStage != f.Stage {
			continue
		}
		if f.StoreType != "" && p.StoreType != f.StoreType {
			continue
		}
		if f.AssignedTo != "" && (p.AssignedTo == nil || *p.AssignedTo != f.AssignedTo) {
			continue
		}
		if needle != "" && !matchesSearch(p, needle) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		less := lessBy(f.SortBy, out[i], out[j])
		if f.Ascending {
			return less
		}
		return lessBy(f.SortBy, out[j], out[i])
	})
	return out, nil
}

func matchesSearch(p Prospect, needle string) bool {
	fields := []string{p.BusinessName, deref(p.ContactFirstName), deref(p.ContactLastName), deref(p.Email), deref(p.City)}
	for _, v := range fields {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func lessBy(col string, a, b Prospect) bool {
	switch col {
	case "business_name":
		return a.BusinessName < b.BusinessName
	case "updated_at":
		return a.UpdatedAt.Before(b.UpdatedAt)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Prospect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prospects[id]
	if !ok {
		return Prospect{}, apperr.NotFound("prospect " + id)
	}
	return p, nil
}

func (r *MemoryRepo) Create(ctx context.Context, p Prospect) (Prospect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prospects[p.ID]; ok {
		return Prospect{}, apperr.ErrConflict
	}
	r.prospects[p.ID] = p
	return p, nil
}

func (r *MemoryRepo) Update(ctx context.Context, id string, in UpdateInput, at time.Time) (Prospect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prospects[id]
	if !ok {
		return Prospect{}, apperr.NotFound("prospect " + id)
	}
	if in.BusinessName != nil {
		p.BusinessName = *in.BusinessName
	}
	assign(&p.ContactFirstName, in.ContactFirstName)
	assign(&p.ContactLastName, in.ContactLastName)
	assign(&p.Email, in.Email)
	assign(&p.Phone, in.Phone)
	assign(&p.Website, in.Website)
	assign(&p.Address, in.Address)
	assign(&p.City, in.City)
	assign(&p.State, in.State)
	assign(&p.Zip, in.Zip)
	assign(&p.AssignedTo, in.AssignedTo)
	assign(&p.Notes, in.Notes)
	if in.EstimatedMonthlyVolume != nil {
		v := *in.EstimatedMonthlyVolume
		p.EstimatedMonthlyVolume = &v
	}
	if in.StoreType != nil {
		p.StoreType = *in.StoreType
	}
	if in.PipelineStage != nil {
		p.PipelineStage = *in.PipelineStage
	}
	if in.Source != nil {
		p.Source = *in.Source
	}
	p.UpdatedAt = at
	r.prospects[id] = p
	return p, nil
}

func assign(dst **string, v *string) {
	if v != nil {
		s := *v
		*dst = &s
	}
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prospects[id]; !ok {
		return apperr.NotFound("prospect " + id)
	}
	delete(r.prospects, id)
	return nil
}

func (r *MemoryRepo) SetStage(ctx context.Context, id string, stage Stage, at time.Time) (Prospect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prospects[id]
	if !ok {
		return Prospect{}, apperr.NotFound("prospect " + id)
	}
	r.stageWrites++
	p.PipelineStage = stage
	p.UpdatedAt = at
	r.prospects[id] = p
	return p, nil
}

func (r *MemoryRepo) TouchLastContacted(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prospects[id]
	if !ok {
		return apperr.NotFound("prospect " + id)
	}
	t := at
	p.LastContactedAt = &t
	p.UpdatedAt = at
	r.prospects[id] = p
	return nil
}
