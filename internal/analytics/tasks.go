package analytics

import (
	"slices"
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
	"gorm.io/datatypes"
)

// calendarDay drops the clock and zone so date-only values compare as dates
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dueDay(d *datatypes.Date) (time.Time, bool) {
	if d == nil {
		return time.Time{}, false
	}
	return calendarDay(time.Time(*d)), true
}

// IsOverdue reports whether an open task's due date lies before now's date
func IsOverdue(t *domain.Task, now time.Time) bool {
	due, ok := dueDay(t.DueDate)
	if !ok || t.Status.IsTerminal() {
		return false
	}
	return due.Before(calendarDay(now))
}

// PartitionTasks splits open tasks with a due date into overdue (due before
// today) and upcoming (due today through today+7, at most UpcomingLimit). Both
// come back ordered by due date ascending.
func PartitionTasks(tasks []domain.Task, now time.Time) (overdue, upcoming []domain.Task) {
	today := calendarDay(now)
	horizon := today.AddDate(0, 0, UpcomingWindowDays)
	overdue = []domain.Task{}
	upcoming = []domain.Task{}
	for _, t := range tasks {
		due, ok := dueDay(t.DueDate)
		if !ok || t.Status.IsTerminal() {
			continue
		}
		switch {
		case due.Before(today):
			overdue = append(overdue, t)
		case !due.After(horizon):
			upcoming = append(upcoming, t)
		}
	}
	byDue := func(a, b domain.Task) int {
		da, _ := dueDay(a.DueDate)
		db, _ := dueDay(b.DueDate)
		return da.Compare(db)
	}
	slices.SortStableFunc(overdue, byDue)
	slices.SortStableFunc(upcoming, byDue)
	if len(upcoming) > UpcomingLimit {
		upcoming = upcoming[:UpcomingLimit]
	}
	return overdue, upcoming
}

// TaskStatusCounts counts tasks per status with every status present
func TaskStatusCounts(tasks []domain.Task) map[string]int {
	counts := make(map[string]int, len(domain.TaskStatuses))
	for _, s := range domain.TaskStatuses {
		counts[string(s)] = 0
	}
	for _, t := range tasks {
		counts[string(t.Status)]++
	}
	return counts
}

// TaskPriorityCounts counts tasks per priority with every priority present
func TaskPriorityCounts(tasks []domain.Task) map[string]int {
	counts := make(map[string]int, len(domain.TaskPriorities))
	for _, p := range domain.TaskPriorities {
		counts[string(p)] = 0
	}
	for _, t := range tasks {
		counts[string(t.Priority)]++
	}
	return counts
}

// TaskStats builds the task counters shown on the tasks page
func TaskStats(tasks []domain.Task, now time.Time) domain.TaskStatsDTO {
	s := domain.TaskStatsDTO{Total: len(tasks)}
	for i := range tasks {
		t := &tasks[i]
		switch t.Status {
		case domain.TaskStatusCompleted:
			s.Completed++
		case domain.TaskStatusPending:
			s.Pending++
		case domain.TaskStatusInProgress:
			s.InProgress++
		}
		if t.Priority == domain.TaskPriorityHigh {
			s.HighPriority++
		}
		if IsOverdue(t, now) {
			s.Overdue++
		}
	}
	s.CompletionRate = Rate(s.Completed, s.Total)
	return s
}

// TaskAnalytics builds the tasks section of the analytics page. Pending counts
// both pending and in-progress tasks.
func TaskAnalytics(tasks []domain.Task, now time.Time) domain.TaskAnalyticsDTO {
	overdue, upcoming := PartitionTasks(tasks, now)
	byStatus := TaskStatusCounts(tasks)
	completed := byStatus[string(domain.TaskStatusCompleted)]
	return domain.TaskAnalyticsDTO{
		Total:          len(tasks),
		Completed:      completed,
		Pending:        byStatus[string(domain.TaskStatusPending)] + byStatus[string(domain.TaskStatusInProgress)],
		Overdue:        mapper.ToTaskDTOs(overdue),
		Upcoming:       mapper.ToTaskDTOs(upcoming),
		ByStatus:       byStatus,
		ByPriority:     TaskPriorityCounts(tasks),
		CompletionRate: Rate(completed, len(tasks)),
	}
}

// TaskPerformance summarizes one profile's tasks
func TaskPerformance(tasks []domain.Task) domain.TaskPerformance {
	p := domain.TaskPerformance{Total: len(tasks)}
	for _, t := range tasks {
		if t.Status == domain.TaskStatusCompleted {
			p.Completed++
		}
	}
	p.CompletionRate = Rate(p.Completed, p.Total)
	return p
}

// OpenTasksByPriority returns the non-terminal tasks, high priority first.
// Tasks of equal priority keep their input order.
func OpenTasksByPriority(tasks []domain.Task) []domain.Task {
	open := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Status.IsTerminal() {
			open = append(open, t)
		}
	}
	slices.SortStableFunc(open, func(a, b domain.Task) int {
		return b.Priority.Rank() - a.Priority.Rank()
	})
	return open
}
