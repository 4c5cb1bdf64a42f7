package activities

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory append-only Repository for tests.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Activity
	names  map[string]string
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{names: make(map[string]string)} }

// SetBusinessName makes Recent embed the prospect name, like the SQL join does.
func (r *MemoryRepo) SetBusinessName(prospectID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[prospectID] = name
}

func (r *MemoryRepo) Append(ctx context.Context, a Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, a)
	return nil
}

// Events returns activities in append order.
func (r *MemoryRepo) Events() []Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Activity, len(r.events))
	copy(out, r.events)
	return out
}

func (r *MemoryRepo) Recent(ctx context.Context, limit int) ([]Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.newestFirst(func(Activity) bool { return true })
	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		if name, ok := r.names[out[i].ProspectID]; ok {
			out[i].Prospect = &ProspectRef{BusinessName: name}
		}
	}
	return out, nil
}

func (r *MemoryRepo) ByProspect(ctx context.Context, prospectID string) ([]Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newestFirst(func(a Activity) bool { return a.ProspectID == prospectID }), nil
}

func (r *MemoryRepo) newestFirst(keep func(Activity) bool) []Activity {
	out := make([]Activity, 0, len(r.events))
	for i := len(r.events) - 1; i >= 0; i-- {
		if keep(r.events[i]) {
			out = append(out, r.events[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
