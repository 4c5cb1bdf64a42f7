package reporting

import (
	"context"
	"sync"
	"time"

	"retail-crm/internal/calls"
	"retail-crm/internal/prospects"
	"retail-crm/internal/tasks"
)

// MemoryRepo counts over in-memory rows. Tests fill the slices directly.
type MemoryRepo struct {
	mu sync.Mutex

	Prospects []prospects.Prospect
	Tasks     []tasks.Task
	Calls     []calls.Call
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) StageCounts(ctx context.Context, assignedTo string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int)
	for _, p := range r.Prospects {
		if assignedTo != "" && (p.AssignedTo == nil || *p.AssignedTo != assignedTo) {
			continue
		}
		out[string(p.PipelineStage)]++
	}
	return out, nil
}

func (r *MemoryRepo) CountTasks(ctx context.Context, q TaskQuery) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.Tasks {
		if q.AssignedTo != "" && (t.AssignedTo == nil || *t.AssignedTo != q.AssignedTo) {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if !q.DueFrom.IsZero() && (t.DueDate == nil || t.DueDate.Before(q.DueFrom)) {
			continue
		}
		if !q.DueBefore.IsZero() && (t.DueDate == nil || !t.DueDate.Before(q.DueBefore)) {
			continue
		}
		if !q.CompletedSince.IsZero() && (t.CompletedAt == nil || t.CompletedAt.Before(q.CompletedSince)) {
			continue
		}
		n++
	}
	return n, nil
}

func (r *MemoryRepo) CountCalls(ctx context.Context, teamMemberID string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.Calls {
		if c.CreatedAt.Before(since) {
			continue
		}
		if teamMemberID != "" && (c.TeamMemberID == nil || *c.TeamMemberID != teamMemberID) {
			continue
		}
		n++
	}
	return n, nil
}
