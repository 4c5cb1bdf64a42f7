package reporting

import (
	"context"
	"time"

	"retail-crm/internal/activities"
	"retail-crm/internal/apperr"
	"retail-crm/internal/prospects"
	"retail-crm/internal/tasks"
)

const dashboardActivityLimit = 10

// Repository answers the counting queries behind the dashboards.
type Repository interface {
	// StageCounts counts prospects per stage; assignedTo "" counts everyone.
	StageCounts(ctx context.Context, assignedTo string) (map[string]int, error)
	CountTasks(ctx context.Context, q TaskQuery) (int, error)
	// CountCalls counts calls created at or after since; teamMemberID ""
	// counts every call.
	CountCalls(ctx context.Context, teamMemberID string, since time.Time) (int, error)
}

type ActivityLister interface {
	Recent(ctx context.Context, limit int) ([]activities.Activity, error)
}

type Service struct {
	repo       Repository
	activities ActivityLister
	clock      func() time.Time
}

func NewService(repo Repository, acts ActivityLister) *Service {
	return &Service{repo: repo, activities: acts, clock: time.Now}
}

// Day, week and month boundaries are taken in the clock's location. Weeks
// start on Sunday.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	now := s.clock()
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	counts, err := s.repo.StageCounts(ctx, "")
	if err != nil {
		return Dashboard{}, apperr.Persistence(err)
	}
	out := Dashboard{Pipeline: make(map[string]int, len(prospects.Stages))}
	for _, st := range prospects.Stages {
		out.Pipeline[string(st)] = 0
	}
	for st, n := range counts {
		out.Pipeline[st] += n
		out.TotalProspects += n
	}

	if out.TasksDueToday, err = s.repo.CountTasks(ctx, TaskQuery{Status: tasks.StatusPending, DueFrom: today, DueBefore: tomorrow}); err != nil {
		return Dashboard{}, apperr.Persistence(err)
	}
	if out.OverdueTasks, err = s.repo.CountTasks(ctx, TaskQuery{Status: tasks.StatusPending, DueBefore: today}); err != nil {
		return Dashboard{}, apperr.Persistence(err)
	}
	if out.PendingTasks, err = s.repo.CountTasks(ctx, TaskQuery{Status: tasks.StatusPending}); err != nil {
		return Dashboard{}, apperr.Persistence(err)
	}
	if out.CallsThisWeek, err = s.repo.CountCalls(ctx, "", startOfWeek(now)); err != nil {
		return Dashboard{}, apperr.Persistence(err)
	}
	if out.RecentActivities, err = s.activities.Recent(ctx, dashboardActivityLimit); err != nil {
		return Dashboard{}, apperr.Persistence(err)
	}
	return out, nil
}

func (s *Service) MemberStats(ctx context.Context, memberID string) (MemberStats, error) {
	if memberID == "" {
		return MemberStats{}, apperr.Invalid("team member id is required")
	}
	month := startOfMonth(s.clock())

	counts, err := s.repo.StageCounts(ctx, memberID)
	if err != nil {
		return MemberStats{}, apperr.Persistence(err)
	}
	out := MemberStats{ProspectsByStage: make(map[string]int, len(counts))}
	for st, n := range counts {
		if n == 0 {
			continue
		}
		out.ProspectsByStage[st] = n
		out.TotalProspects += n
	}

	if out.PendingTasks, err = s.repo.CountTasks(ctx, TaskQuery{AssignedTo: memberID, Status: tasks.StatusPending}); err != nil {
		return MemberStats{}, apperr.Persistence(err)
	}
	if out.CompletedTasksThisMonth, err = s.repo.CountTasks(ctx, TaskQuery{AssignedTo: memberID, Status: tasks.StatusCompleted, CompletedSince: month}); err != nil {
		return MemberStats{}, apperr.Persistence(err)
	}
	if out.CallsThisMonth, err = s.repo.CountCalls(ctx, memberID, month); err != nil {
		return MemberStats{}, apperr.Persistence(err)
	}
	return out, nil
}
