package tasks

import (
	"context"
	"sort"
	"sync"
	"time"

	"retail-crm/internal/apperr"
)

// MemoryRepo is an in-memory Repository for tests.
type MemoryRepo struct {
	mu    sync.Mutex
	tasks map[string]Task
	names map[string]string
}

func NewMemoryRepo(seed ...Task) *MemoryRepo {
	r := &MemoryRepo{tasks: make(map[string]Task), names: make(map[string]string)}
	for _, t := range seed {
		r.tasks[t.ID] = t
	}
	return r
}

// SetBusinessName registers the prospect name embedded in listings.
func (r *MemoryRepo) SetBusinessName(prospectID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[prospectID] = name
}

func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if f.AssignedTo != "" && (t.AssignedTo == nil || *t.AssignedTo != f.AssignedTo) {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.ProspectID != "" && (t.ProspectID == nil || *t.ProspectID != f.ProspectID) {
			continue
		}
		out = append(out, r.withProspect(t))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		switch {
		case a == nil && b == nil:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return out[i].CreatedAt.After(out[j].CreatedAt)
		default:
			return a.Before(*b)
		}
	})
	return out, nil
}

func (r *MemoryRepo) withProspect(t Task) Task {
	if t.ProspectID != nil {
		if name, ok := r.names[*t.ProspectID]; ok {
			t.Prospect = &ProspectRef{BusinessName: name}
		}
	}
	return t
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, apperr.NotFound("task " + id)
	}
	return r.withProspect(t), nil
}

func (r *MemoryRepo) Create(ctx context.Context, t Task) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; ok {
		return Task{}, apperr.ErrConflict
	}
	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) Update(ctx context.Context, id string, in UpdateInput, at time.Time) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, apperr.NotFound("task " + id)
	}
	if in.ProspectID != nil {
		t.ProspectID = in.ProspectID
	}
	if in.AssignedTo != nil {
		t.AssignedTo = in.AssignedTo
	}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = in.Description
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.CompletedAt != nil {
		t.CompletedAt = in.CompletedAt
	}
	t.UpdatedAt = at
	r.tasks[id] = t
	return r.withProspect(t), nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return apperr.NotFound("task " + id)
	}
	delete(r.tasks, id)
	return nil
}
