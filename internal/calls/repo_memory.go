package calls

import (
	"context"
	"sort"
	"sync"

	"retail-crm/internal/apperr"
)

// MemoryRepo is an in-memory Repository for tests.
type MemoryRepo struct {
	mu        sync.Mutex
	calls     map[string]Call
	prospects map[string]ProspectRef

	updates int
}

func NewMemoryRepo(seed ...Call) *MemoryRepo {
	r := &MemoryRepo{calls: make(map[string]Call), prospects: make(map[string]ProspectRef)}
	for _, c := range seed {
		r.calls[c.ID] = c
	}
	return r
}

// SetProspect registers the prospect fields embedded on reads.
func (r *MemoryRepo) SetProspect(prospectID string, ref ProspectRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prospects[prospectID] = ref
}

// Updates reports how many Update calls reached the store.
func (r *MemoryRepo) Updates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates
}

// All returns every stored call without embedded prospects.
func (r *MemoryRepo) All() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c)
	}
	return out
}

func (r *MemoryRepo) Create(ctx context.Context, c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calls[c.ID]; ok {
		return apperr.ErrConflict
	}
	if c.BlandCallID != nil {
		for _, existing := range r.calls {
			if existing.BlandCallID != nil && *existing.BlandCallID == *c.BlandCallID {
				return apperr.ErrConflict
			}
		}
	}
	r.calls[c.ID] = c
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[id]
	if !ok {
		return Call{}, apperr.NotFound("call " + id)
	}
	return r.withProspect(c, true), nil
}

func (r *MemoryRepo) GetByProviderID(ctx context.Context, providerCallID string) (Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if c.BlandCallID != nil && *c.BlandCallID == providerCallID {
			return r.withProspect(c, true), nil
		}
	}
	return Call{}, apperr.NotFound("call with provider id " + providerCallID)
}

func (r *MemoryRepo) Update(ctx context.Context, c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calls[c.ID]; !ok {
		return apperr.NotFound("call " + c.ID)
	}
	c.Prospect = nil
	r.calls[c.ID] = c
	r.updates++
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, 0, len(r.calls))
	for _, c := range r.calls {
		if f.ProspectID != "" && (c.ProspectID == nil || *c.ProspectID != f.ProspectID) {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.TeamMemberID != "" && (c.TeamMemberID == nil || *c.TeamMemberID != f.TeamMemberID) {
			continue
		}
		out = append(out, r.withProspect(c, false))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) withProspect(c Call, withEmail bool) Call {
	if c.ProspectID == nil {
		return c
	}
	ref, ok := r.prospects[*c.ProspectID]
	if !ok {
		return c
	}
	if !withEmail {
		ref.Email = nil
	}
	c.Prospect = &ref
	return c
}
