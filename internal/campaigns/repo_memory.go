package campaigns

import (
	"context"
	"sort"
	"sync"
	"time"

	"retail-crm/internal/apperr"
)

// MemoryRepo is an in-memory Repository for tests.
type MemoryRepo struct {
	mu        sync.Mutex
	campaigns map[string]Campaign
	members   []Member
	prospects map[string]ProspectRef
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		campaigns: make(map[string]Campaign),
		prospects: make(map[string]ProspectRef),
	}
}

// SetProspect registers prospect details joined into member listings.
func (r *MemoryRepo) SetProspect(id string, ref ProspectRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prospects[id] = ref
}

func (r *MemoryRepo) List(ctx context.Context) ([]Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return Campaign{}, apperr.NotFound("campaign " + id)
	}
	return c, nil
}

func (r *MemoryRepo) Members(ctx context.Context, campaignID string, status MemberStatus) ([]Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Member, 0)
	for _, m := range r.members {
		if m.CampaignID != campaignID {
			continue
		}
		if status != "" && m.Status != status {
			continue
		}
		if ref, ok := r.prospects[m.ProspectID]; ok {
			m.Prospect = &ref
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MemoryRepo) Create(ctx context.Context, c Campaign, members []Member) (Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[c.ID]; ok {
		return Campaign{}, apperr.ErrConflict
	}
	r.campaigns[c.ID] = c
	r.members = append(r.members, members...)
	return c, nil
}

func (r *MemoryRepo) SetStatus(ctx context.Context, id string, status Status, at time.Time) (Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return Campaign{}, apperr.NotFound("campaign " + id)
	}
	c.Status = status
	c.UpdatedAt = at
	r.campaigns[id] = c
	return c, nil
}

func (r *MemoryRepo) MarkMembers(ctx context.Context, memberIDs []string, status MemberStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		want[id] = true
	}
	for i := range r.members {
		if want[r.members[i].ID] {
			r.members[i].Status = status
		}
	}
	return nil
}
