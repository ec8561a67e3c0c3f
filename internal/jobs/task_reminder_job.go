package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/pulse-crm/crm-api/internal/analytics"
	"github.com/pulse-crm/crm-api/internal/domain"
	"go.uber.org/zap"
)

// TaskReminderJobName is the scheduler name of the overdue task reminder
const TaskReminderJobName = "task_reminder"

// OpenTaskSource lists the tasks that may be overdue
type OpenTaskSource interface {
	ListOpenWithDueDate(ctx context.Context) ([]domain.Task, error)
}

// ReminderLog tells whether a task was already reminded about
type ReminderLog interface {
	TaskReminderExists(ctx context.Context, taskID int64, kind string, since time.Time) (bool, error)
}

// Notifier delivers a notification to a profile
type Notifier interface {
	Create(ctx context.Context, req *domain.CreateNotificationRequest) (*domain.NotificationDTO, error)
}

// TaskReminderJob notifies the assignee of every overdue open task, at most
// once per task per day
type TaskReminderJob struct {
	tasks     OpenTaskSource
	reminders ReminderLog
	notifier  Notifier
	location  *time.Location
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewTaskReminderJob(tasks OpenTaskSource, reminders ReminderLog, notifier Notifier, location *time.Location, logger *zap.Logger, timeout time.Duration) *TaskReminderJob {
	if location == nil {
		location = time.UTC
	}
	return &TaskReminderJob{
		tasks:     tasks,
		reminders: reminders,
		notifier:  notifier,
		location:  location,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// ReminderResult counts what one run did
type ReminderResult struct {
	Overdue  int
	Notified int
	Skipped  int
	Failed   int
}

// Run is the scheduler entry point
func (j *TaskReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.Error("task reminder job failed", zap.Error(err))
	}
}

// RunOnce sends today's reminders. A failure for one task is logged and
// does not stop the others.
func (j *TaskReminderJob) RunOnce(ctx context.Context) (ReminderResult, error) {
	var result ReminderResult
	start := time.Now()
	now := j.now().In(j.location)
	today := analytics.Today(now).UTC()

	tasks, err := j.tasks.ListOpenWithDueDate(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list open tasks: %w", err)
	}

	for i := range tasks {
		task := &tasks[i]
		if !analytics.IsOverdue(task, now) {
			continue
		}
		result.Overdue++

		recipient := task.CreatedBy
		if task.AssignedTo != nil {
			recipient = *task.AssignedTo
		}

		sent, err := j.reminders.TaskReminderExists(ctx, task.ID, domain.NotificationTypeTaskOverdue, today)
		if err != nil {
			result.Failed++
			j.logger.Warn("failed to check task reminder", zap.Int64("task_id", task.ID), zap.Error(err))
			continue
		}
		if sent {
			result.Skipped++
			continue
		}

		taskID := task.ID
		_, err = j.notifier.Create(ctx, &domain.CreateNotificationRequest{
			ProfileID: recipient,
			Content:   fmt.Sprintf("Task %q is overdue (due %s)", task.Title, time.Time(*task.DueDate).Format("2006-01-02")),
			Type:      domain.NotificationTypeTaskOverdue,
			TaskID:    &taskID,
		})
		if err != nil {
			result.Failed++
			j.logger.Warn("failed to create task reminder",
				zap.Int64("task_id", task.ID),
				zap.Int64("profile_id", recipient),
				zap.Error(err))
			continue
		}
		result.Notified++
	}

	j.logger.Info("task reminder job completed",
		zap.Int("overdue", result.Overdue),
		zap.Int("notified", result.Notified),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// RegisterTaskReminderJob adds the reminder job to the scheduler
func RegisterTaskReminderJob(scheduler *Scheduler, job *TaskReminderJob, cronExpr string) error {
	return scheduler.AddJob(TaskReminderJobName, cronExpr, job.Run)
}
