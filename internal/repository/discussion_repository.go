package repository

import (
	"context"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type DiscussionRepository struct {
	db *gorm.DB
}

func NewDiscussionRepository(db *gorm.DB) *DiscussionRepository {
	return &DiscussionRepository{db: db}
}

// DiscussionSummary is a discussion with its chat count and latest chat
type DiscussionSummary struct {
	Discussion domain.Discussion
	ChatCount  int
	LastChat   *domain.Chat
}

func (r *DiscussionRepository) Create(ctx context.Context, discussion *domain.Discussion) error {
	return r.db.WithContext(ctx).Omit("Chats").Create(discussion).Error
}

func (r *DiscussionRepository) GetByID(ctx context.Context, id int64) (*domain.Discussion, error) {
	var discussion domain.Discussion
	if err := r.db.WithContext(ctx).First(&discussion, "discussion_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &discussion, nil
}

// ListByProfile returns the profile's discussions, newest first, each with its
// chat count and latest chat
func (r *DiscussionRepository) ListByProfile(ctx context.Context, profileID int64) ([]DiscussionSummary, error) {
	var discussions []domain.Discussion
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC, discussion_id DESC").
		Find(&discussions).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]DiscussionSummary, 0, len(discussions))
	if len(discussions) == 0 {
		return summaries, nil
	}

	ids := make([]int64, len(discussions))
	for i, d := range discussions {
		ids[i] = d.ID
	}

	var chats []domain.Chat
	err = r.db.WithContext(ctx).
		Where("discussion_id IN ?", ids).
		Order("created_at ASC, chat_id ASC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int, len(ids))
	last := make(map[int64]domain.Chat, len(ids))
	for _, c := range chats {
		counts[c.DiscussionID]++
		last[c.DiscussionID] = c
	}

	for _, d := range discussions {
		summary := DiscussionSummary{Discussion: d, ChatCount: counts[d.ID]}
		if c, ok := last[d.ID]; ok {
			summary.LastChat = &c
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (r *DiscussionRepository) Rename(ctx context.Context, id int64, name string) error {
	return affected(r.db.WithContext(ctx).
		Model(&domain.Discussion{}).
		Where("discussion_id = ?", id).
		Update("name", name))
}

// Delete removes a discussion and its chats
func (r *DiscussionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("discussion_id = ?", id).Delete(&domain.Chat{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&domain.Discussion{}, "discussion_id = ?", id))
	})
}

// ListChats returns the chats of a discussion, oldest first
func (r *DiscussionRepository) ListChats(ctx context.Context, discussionID int64) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Where("discussion_id = ?", discussionID).
		Order("created_at ASC, chat_id ASC").
		Find(&chats).Error
	return chats, err
}

func (r *DiscussionRepository) CreateChat(ctx context.Context, chat *domain.Chat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *DiscussionRepository) GetChat(ctx context.Context, id int64) (*domain.Chat, error) {
	var chat domain.Chat
	if err := r.db.WithContext(ctx).First(&chat, "chat_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *DiscussionRepository) DeleteChat(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.Chat{}, "chat_id = ?", id))
}
