package tasks

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"retail-crm/internal/activities"
	"retail-crm/internal/apperr"

	"github.com/google/uuid"
)

// Repository persists tasks. List orders by due date, earliest first, with
// undated tasks last.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Task, error)
	Get(ctx context.Context, id string) (Task, error)
	Create(ctx context.Context, t Task) (Task, error)
	Update(ctx context.Context, id string, in UpdateInput, at time.Time) (Task, error)
	Delete(ctx context.Context, id string) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, a activities.Activity) (activities.Activity, error)
}

type Service struct {
	repo       Repository
	activities ActivityRecorder
	clock      func() time.Time
	log        *slog.Logger
}

func NewService(repo Repository, acts ActivityRecorder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, activities: acts, clock: time.Now, log: log.With("component", "tasks")}
}

func (s *Service) List(ctx context.Context, f Filter) ([]Task, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Invalid("invalid task status")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, apperr.Invalid("invalid task priority")
	}
	out, err := s.repo.List(ctx, f)
	return out, apperr.Persistence(err)
}

func (s *Service) Get(ctx context.Context, id string) (Task, error) {
	t, err := s.repo.Get(ctx, id)
	return t, apperr.Persistence(err)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, apperr.Invalid("title is required")
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return Task{}, apperr.Invalid("invalid task priority")
	}

	now := s.clock().UTC()
	t, err := s.repo.Create(ctx, Task{
		ID:          uuid.NewString(),
		ProspectID:  in.ProspectID,
		AssignedTo:  in.AssignedTo,
		Title:       title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return t, apperr.Persistence(err)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Task, error) {
	if in.Title != nil {
		v := strings.TrimSpace(*in.Title)
		if v == "" {
			return Task{}, apperr.Invalid("title cannot be empty")
		}
		in.Title = &v
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return Task{}, apperr.Invalid("invalid task priority")
	}
	if in.Status != nil && !in.Status.Valid() {
		return Task{}, apperr.Invalid("invalid task status")
	}
	now := s.clock().UTC()
	if in.Status != nil && *in.Status == StatusCompleted {
		in.CompletedAt = &now
	}
	t, err := s.repo.Update(ctx, id, in, now)
	return t, apperr.Persistence(err)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return apperr.Persistence(s.repo.Delete(ctx, id))
}

// Complete marks a task completed and, when it belongs to a prospect, logs
// a task_completed activity. Completing an already completed task is a no-op.
func (s *Service) Complete(ctx context.Context, id string) (Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, apperr.Persistence(err)
	}
	if t.Status == StatusCompleted {
		return t, nil
	}

	now := s.clock().UTC()
	status := StatusCompleted
	done, err := s.repo.Update(ctx, id, UpdateInput{Status: &status, CompletedAt: &now}, now)
	if err != nil {
		return Task{}, apperr.Persistence(err)
	}

	if t.ProspectID != nil && *t.ProspectID != "" {
		if _, err := s.activities.Record(ctx, activities.Activity{
			ProspectID: *t.ProspectID,
			Type:       activities.TypeTaskCompleted,
			Title:      "Task completed: " + t.Title,
			Metadata:   map[string]any{"task_id": t.ID},
		}); err != nil {
			s.log.Error("task completed without activity", "task_id", t.ID, "err", err)
			return done, err
		}
	}
	return done, nil
}
