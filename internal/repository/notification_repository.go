package repository

import (
	"context"
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	var notification domain.Notification
	if err := r.db.WithContext(ctx).First(&notification, "notification_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListByProfile returns a profile's notifications, newest first
func (r *NotificationRepository) ListByProfile(ctx context.Context, profileID int64, unreadOnly bool) ([]domain.Notification, error) {
	query := r.db.WithContext(ctx).Where("profile_id = ?", profileID)
	if unreadOnly {
		query = query.Where("seen_at IS NULL")
	}

	var notifications []domain.Notification
	err := query.Order("created_at DESC, notification_id DESC").Find(&notifications).Error
	return notifications, err
}

// ListUnread returns a profile's notifications that were never seen
func (r *NotificationRepository) ListUnread(ctx context.Context, profileID int64) ([]domain.Notification, error) {
	return r.ListByProfile(ctx, profileID, true)
}

// MarkSeen stamps seen_at on one of the profile's notifications
func (r *NotificationRepository) MarkSeen(ctx context.Context, id, profileID int64, at time.Time) error {
	return affected(r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("notification_id = ? AND profile_id = ?", id, profileID).
		Update("seen_at", at))
}

// MarkAllSeen stamps every unseen notification of the profile and returns how many changed
func (r *NotificationRepository) MarkAllSeen(ctx context.Context, profileID int64, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("profile_id = ? AND seen_at IS NULL", profileID).
		Update("seen_at", at)
	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) Delete(ctx context.Context, id, profileID int64) error {
	return affected(r.db.WithContext(ctx).
		Where("notification_id = ? AND profile_id = ?", id, profileID).
		Delete(&domain.Notification{}))
}

// Counts returns the total and unseen notification counts of a profile
func (r *NotificationRepository) Counts(ctx context.Context, profileID int64) (total, unread int64, err error) {
	err = r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("profile_id = ?", profileID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("profile_id = ? AND seen_at IS NULL", profileID).
		Count(&unread).Error
	return total, unread, err
}

// TaskReminderExists reports whether a notification of kind for taskID was
// created at or after since
func (r *NotificationRepository) TaskReminderExists(ctx context.Context, taskID int64, kind string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("task_id = ? AND type = ? AND created_at >= ?", taskID, kind, since).
		Count(&count).Error
	return count > 0, err
}
