package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/repository"
	"github.com/pulse-crm/crm-api/internal/service"
	"github.com/pulse-crm/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type reminderFixture struct {
	db       *gorm.DB
	job      *TaskReminderJob
	logs     *observer.ObservedLogs
	owner    *domain.Profile
	assignee *domain.Profile
}

func newReminderFixture(t *testing.T, now time.Time) *reminderFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	company := testutil.CreateCompany(t, db, "Acme")
	owner := testutil.CreateProfile(t, db, company.ID, domain.ProfileRoleAdmin, "Owner")
	assignee := testutil.CreateProfile(t, db, company.ID, domain.ProfileRoleUser, "Assignee")

	notificationRepo := repository.NewNotificationRepository(db)
	job := NewTaskReminderJob(
		repository.NewTaskRepository(db, repository.NewScopeResolver(db)),
		notificationRepo,
		service.NewNotificationService(notificationRepo, log),
		time.UTC,
		log,
		time.Minute,
	)
	job.now = func() time.Time { return now }

	return &reminderFixture{db: db, job: job, logs: logs, owner: owner, assignee: assignee}
}

func (f *reminderFixture) notificationsFor(t *testing.T, profileID int64) []domain.Notification {
	t.Helper()
	var out []domain.Notification
	require.NoError(t, f.db.Where("profile_id = ?", profileID).Order("notification_id").Find(&out).Error)
	return out
}

func TestTaskReminderJob_NotifiesOverdueTasks(t *testing.T) {
	now := time.Date(2024, 3, 15, 7, 0, 0, 0, time.UTC)
	f := newReminderFixture(t, now)

	overdue := testutil.CreateTask(t, f.db, f.owner.ID, "Call back", domain.TaskStatusPending, testutil.Date(now.AddDate(0, 0, -2)))
	require.NoError(t, f.db.Model(overdue).Update("assigned_to", f.assignee.ID).Error)

	unassigned := testutil.CreateTask(t, f.db, f.owner.ID, "Send quote", domain.TaskStatusInProgress, testutil.Date(now.AddDate(0, 0, -1)))
	require.NoError(t, f.db.Model(unassigned).Update("assigned_to", nil).Error)

	testutil.CreateTask(t, f.db, f.owner.ID, "Due today", domain.TaskStatusPending, testutil.Date(now))
	testutil.CreateTask(t, f.db, f.owner.ID, "Done", domain.TaskStatusCompleted, testutil.Date(now.AddDate(0, 0, -5)))
	testutil.CreateTask(t, f.db, f.owner.ID, "Someday", domain.TaskStatusPending, nil)

	result, err := f.job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReminderResult{Overdue: 2, Notified: 2}, result)

	toAssignee := f.notificationsFor(t, f.assignee.ID)
	require.Len(t, toAssignee, 1)
	assert.Equal(t, domain.NotificationTypeTaskOverdue, toAssignee[0].Type)
	require.NotNil(t, toAssignee[0].TaskID)
	assert.Equal(t, overdue.ID, *toAssignee[0].TaskID)
	assert.Contains(t, toAssignee[0].Content, "Call back")
	assert.Contains(t, toAssignee[0].Content, "2024-03-13")

	toOwner := f.notificationsFor(t, f.owner.ID)
	require.Len(t, toOwner, 1, "unassigned tasks fall back to the creator")
	assert.Equal(t, unassigned.ID, *toOwner[0].TaskID)

	entries := f.logs.FilterMessage("task reminder job completed").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 2, entries[0].ContextMap()["notified"])
}

// clockedNotifier stores notifications stamped with the job's clock
type clockedNotifier struct {
	repo *repository.NotificationRepository
	job  *TaskReminderJob
}

func (n clockedNotifier) Create(ctx context.Context, req *domain.CreateNotificationRequest) (*domain.NotificationDTO, error) {
	notification := &domain.Notification{
		ProfileID: req.ProfileID,
		Content:   req.Content,
		Type:      req.Type,
		TaskID:    req.TaskID,
		CreatedAt: n.job.now().UTC(),
	}
	if err := n.repo.Create(ctx, notification); err != nil {
		return nil, err
	}
	return &domain.NotificationDTO{ID: notification.ID}, nil
}

func TestTaskReminderJob_OncePerDay(t *testing.T) {
	now := time.Date(2024, 3, 15, 7, 0, 0, 0, time.UTC)
	f := newReminderFixture(t, now)
	f.job.notifier = clockedNotifier{repo: repository.NewNotificationRepository(f.db), job: f.job}
	testutil.CreateTask(t, f.db, f.owner.ID, "Call back", domain.TaskStatusPending, testutil.Date(now.AddDate(0, 0, -1)))

	first, err := f.job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Notified)

	f.job.now = func() time.Time { return now.Add(6 * time.Hour) }
	second, err := f.job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReminderResult{Overdue: 1, Skipped: 1}, second)

	f.job.now = func() time.Time { return now.AddDate(0, 0, 1) }
	third, err := f.job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, third.Notified, "a new day sends a new reminder")

	assert.Len(t, f.notificationsFor(t, f.owner.ID), 2)
}

type failingNotifier struct{}

func (failingNotifier) Create(context.Context, *domain.CreateNotificationRequest) (*domain.NotificationDTO, error) {
	return nil, errors.New("insert failed")
}

type failingTasks struct{}

func (failingTasks) ListOpenWithDueDate(context.Context) ([]domain.Task, error) {
	return nil, errors.New("connection refused")
}

func TestTaskReminderJob_Failures(t *testing.T) {
	now := time.Date(2024, 3, 15, 7, 0, 0, 0, time.UTC)

	t.Run("notifier errors are counted", func(t *testing.T) {
		f := newReminderFixture(t, now)
		testutil.CreateTask(t, f.db, f.owner.ID, "A", domain.TaskStatusPending, testutil.Date(now.AddDate(0, 0, -1)))
		testutil.CreateTask(t, f.db, f.owner.ID, "B", domain.TaskStatusPending, testutil.Date(now.AddDate(0, 0, -3)))
		f.job.notifier = failingNotifier{}

		result, err := f.job.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ReminderResult{Overdue: 2, Failed: 2}, result)
		assert.Equal(t, 2, f.logs.FilterMessage("failed to create task reminder").Len())
	})

	t.Run("listing error aborts the run", func(t *testing.T) {
		f := newReminderFixture(t, now)
		f.job.tasks = failingTasks{}

		_, err := f.job.RunOnce(context.Background())
		assert.ErrorContains(t, err, "connection refused")

		f.job.Run()
		assert.Equal(t, 1, f.logs.FilterMessage("task reminder job failed").Len())
	})
}

func TestTaskReminderJob_UsesConfiguredLocation(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 23:30 UTC on the 14th is already the 15th in Oslo
	now := time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC)
	f := newReminderFixture(t, now)
	f.job.location = oslo
	testutil.CreateTask(t, f.db, f.owner.ID, "Due 14th", domain.TaskStatusPending, testutil.Date(now))

	result, err := f.job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Notified)
}
