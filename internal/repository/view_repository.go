package repository

import (
	"context"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ViewRepository stores which profile has seen which message
type ViewRepository struct {
	db *gorm.DB
}

func NewViewRepository(db *gorm.DB) *ViewRepository {
	return &ViewRepository{db: db}
}

// ViewedMessageIDs returns the subset of messageIDs already viewed by profileID.
// A nil messageIDs returns every message the profile has viewed.
func (r *ViewRepository) ViewedMessageIDs(ctx context.Context, profileID int64, messageIDs []int64) ([]int64, error) {
	ids := []int64{}
	if messageIDs != nil && len(messageIDs) == 0 {
		return ids, nil
	}
	query := r.db.WithContext(ctx).
		Model(&domain.View{}).
		Where("profile_id = ?", profileID)
	if messageIDs != nil {
		query = query.Where("message_id IN ?", messageIDs)
	}
	err := query.Order("message_id").Pluck("message_id", &ids).Error
	return ids, err
}

// ViewedInRoom returns ids of messages in roomID viewed by profileID
func (r *ViewRepository) ViewedInRoom(ctx context.Context, roomID, profileID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.WithContext(ctx).
		Model(&domain.View{}).
		Joins("JOIN messages m ON m.message_id = views.message_id").
		Where("views.profile_id = ? AND m.room_id = ?", profileID, roomID).
		Order("views.message_id").
		Pluck("views.message_id", &ids).Error
	return ids, err
}

// Insert stores views, ignoring pairs that already exist. It returns the number
// of rows actually written.
func (r *ViewRepository) Insert(ctx context.Context, views []domain.View) (int64, error) {
	if len(views) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "profile_id"}},
			DoNothing: true,
		}).
		Create(&views)
	return result.RowsAffected, result.Error
}

// Count returns the number of views recorded for a message/profile pair
func (r *ViewRepository) Count(ctx context.Context, messageID, profileID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.View{}).
		Where("message_id = ? AND profile_id = ?", messageID, profileID).
		Count(&count).Error
	return count, err
}
