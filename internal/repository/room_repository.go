package repository

import (
	"context"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create inserts the room and its initial members in one transaction
func (r *RoomRepository) Create(ctx context.Context, room *domain.Room, memberIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return nil
		}
		members := make([]domain.ProfileRoom, 0, len(memberIDs))
		for _, id := range memberIDs {
			members = append(members, domain.ProfileRoom{ProfileID: id, RoomID: room.ID})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&members).Error
	})
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	if err := r.db.WithContext(ctx).First(&room, "room_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// ListForProfile returns the rooms the profile is a member of, newest first
func (r *RoomRepository) ListForProfile(ctx context.Context, profileID int64) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.WithContext(ctx).
		Joins("JOIN profiles_rooms pr ON pr.room_id = rooms.room_id").
		Where("pr.profile_id = ?", profileID).
		Order("rooms.created_at DESC, rooms.room_id DESC").
		Find(&rooms).Error
	return rooms, err
}

// AddMember is a no-op when the profile is already a member
func (r *RoomRepository) AddMember(ctx context.Context, roomID, profileID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.ProfileRoom{RoomID: roomID, ProfileID: profileID}).Error
}

func (r *RoomRepository) RemoveMember(ctx context.Context, roomID, profileID int64) error {
	return affected(r.db.WithContext(ctx).
		Where("room_id = ? AND profile_id = ?", roomID, profileID).
		Delete(&domain.ProfileRoom{}))
}

// ListMembers returns memberships with their profiles, in join order
func (r *RoomRepository) ListMembers(ctx context.Context, roomID int64) ([]domain.ProfileRoom, error) {
	var members []domain.ProfileRoom
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("room_id = ?", roomID).
		Order("created_at ASC, profiles_rooms_id ASC").
		Find(&members).Error
	return members, err
}

func (r *RoomRepository) IsMember(ctx context.Context, roomID, profileID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ProfileRoom{}).
		Where("room_id = ? AND profile_id = ?", roomID, profileID).
		Count(&count).Error
	return count > 0, err
}

// Delete removes the room with its memberships, messages and their views
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		messageIDs := tx.Model(&domain.Message{}).Select("message_id").Where("room_id = ?", id)
		if err := tx.Where("message_id IN (?)", messageIDs).Delete(&domain.View{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", id).Delete(&domain.ProfileRoom{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&domain.Room{}, "room_id = ?", id))
	})
}
