package repository

import (
	"context"
	"slices"
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	return r.db.WithContext(ctx).Omit("Sender", "File", "ReplyToMessage").Create(message).Error
}

func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	var message domain.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("File").
		First(&message, "message_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListPage returns the last limit messages of a room, oldest first
func (r *MessageRepository) ListPage(ctx context.Context, roomID int64, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("File").
		Where("room_id = ?", roomID).
		Order("send_at DESC, message_id DESC").
		Limit(clampLimit(limit, 50)).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	return messages, nil
}

// Latest returns the most recent message of a room, or nil when it is empty
func (r *MessageRepository) Latest(ctx context.Context, roomID int64) (*domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("room_id = ?", roomID).
		Order("send_at DESC, message_id DESC").
		Limit(1).
		Find(&messages).Error
	if err != nil || len(messages) == 0 {
		return nil, err
	}
	return &messages[0], nil
}

// IDsNotSentBy returns the ids of messages in a room whose sender is not profileID
func (r *MessageRepository) IDsNotSentBy(ctx context.Context, roomID, profileID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("room_id = ? AND sender_id <> ?", roomID, profileID).
		Order("message_id").
		Pluck("message_id", &ids).Error
	return ids, err
}

// IDsInRoom returns the subset of ids that name messages of roomID
func (r *MessageRepository) IDsInRoom(ctx context.Context, roomID int64, ids []int64) ([]int64, error) {
	found := []int64{}
	if len(ids) == 0 {
		return found, nil
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("room_id = ? AND message_id IN ?", roomID, ids).
		Order("message_id").
		Pluck("message_id", &found).Error
	return found, err
}

// CountByRooms counts messages across the given rooms
func (r *MessageRepository) CountByRooms(ctx context.Context, roomIDs []int64) (int64, error) {
	if len(roomIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("room_id IN ?", roomIDs).
		Count(&count).Error
	return count, err
}

// CountSince counts messages in a room sent at or after since
func (r *MessageRepository) CountSince(ctx context.Context, roomID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("room_id = ? AND send_at >= ?", roomID, since).
		Count(&count).Error
	return count, err
}

func (r *MessageRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	return affected(r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("message_id = ?", id).
		Update("content", content))
}

// AttachFile links an uploaded file to a message
func (r *MessageRepository) AttachFile(ctx context.Context, id, fileID int64) error {
	return affected(r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("message_id = ?", id).
		Update("file_id", fileID))
}

// Delete removes a message and the views recorded for it
func (r *MessageRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&domain.View{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&domain.Message{}, "message_id = ?", id))
	})
}
