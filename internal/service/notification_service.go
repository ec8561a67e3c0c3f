package service

import (
	"context"
	"strings"
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
	"github.com/pulse-crm/crm-api/internal/repository"
	"go.uber.org/zap"
)

// NotificationService delivers notifications to profiles and tracks which they have seen
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
	now              func() time.Time
}

func NewNotificationService(notificationRepo *repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
		now:              time.Now,
	}
}

// Create stores a notification for req.ProfileID. It runs without a caller and
// is used by background jobs.
func (s *NotificationService) Create(ctx context.Context, req *domain.CreateNotificationRequest) (*domain.NotificationDTO, error) {
	if strings.TrimSpace(req.Content) == "" || req.ProfileID <= 0 {
		return nil, ErrInvalidInput
	}
	kind := req.Type
	if kind == "" {
		kind = domain.NotificationTypeGeneral
	}

	notification := &domain.Notification{
		ProfileID: req.ProfileID,
		Content:   req.Content,
		Type:      kind,
		TaskID:    req.TaskID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, wrap(err, "create notification")
	}

	s.logger.Info("notification created",
		zap.Int64("notification_id", notification.ID),
		zap.Int64("profile_id", notification.ProfileID),
		zap.String("type", kind),
	)
	dto := mapper.ToNotificationDTO(notification)
	return &dto, nil
}

// List returns the caller's notifications, newest first
func (s *NotificationService) List(ctx context.Context, unreadOnly bool) ([]domain.NotificationDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var notifications []domain.Notification
	if unreadOnly {
		notifications, err = s.notificationRepo.ListUnread(ctx, user.ProfileID)
	} else {
		notifications, err = s.notificationRepo.ListByProfile(ctx, user.ProfileID, false)
	}
	if err != nil {
		return nil, wrap(err, "list notifications")
	}
	return mapper.ToNotificationDTOs(notifications), nil
}

func (s *NotificationService) Count(ctx context.Context) (*domain.NotificationCountDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	total, unread, err := s.notificationRepo.Counts(ctx, user.ProfileID)
	if err != nil {
		return nil, wrap(err, "count notifications")
	}
	return &domain.NotificationCountDTO{Total: total, Unread: unread}, nil
}

// MarkSeen stamps one of the caller's notifications. Notifications of other
// profiles are reported as missing.
func (s *NotificationService) MarkSeen(ctx context.Context, id int64) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}
	if err := s.notificationRepo.MarkSeen(ctx, id, user.ProfileID, s.now().UTC()); err != nil {
		return wrap(err, "mark notification seen")
	}
	return nil
}

// MarkAllSeen stamps every unseen notification of the caller and returns how many changed
func (s *NotificationService) MarkAllSeen(ctx context.Context) (int64, error) {
	user, err := actor(ctx)
	if err != nil {
		return 0, err
	}
	n, err := s.notificationRepo.MarkAllSeen(ctx, user.ProfileID, s.now().UTC())
	if err != nil {
		return 0, wrap(err, "mark notifications seen")
	}
	s.logger.Debug("notifications marked seen",
		zap.Int64("profile_id", user.ProfileID),
		zap.Int64("count", n),
	)
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, id int64) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}
	if err := s.notificationRepo.Delete(ctx, id, user.ProfileID); err != nil {
		return wrap(err, "delete notification")
	}
	return nil
}
