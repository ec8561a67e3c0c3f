package service

import (
	"context"
	"strings"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
	"github.com/pulse-crm/crm-api/internal/repository"
	"go.uber.org/zap"
)

// DiscussionService manages a profile's private assistant conversations
type DiscussionService struct {
	discussionRepo *repository.DiscussionRepository
	logger         *zap.Logger
}

func NewDiscussionService(discussionRepo *repository.DiscussionRepository, logger *zap.Logger) *DiscussionService {
	return &DiscussionService{
		discussionRepo: discussionRepo,
		logger:         logger,
	}
}

// own loads a discussion of the caller; other profiles' discussions are missing
func (s *DiscussionService) own(ctx context.Context, id int64) (*domain.Discussion, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	discussion, err := s.discussionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get discussion")
	}
	if discussion.ProfileID != user.ProfileID {
		return nil, ErrNotFound
	}
	return discussion, nil
}

func (s *DiscussionService) List(ctx context.Context) ([]domain.DiscussionDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := s.discussionRepo.ListByProfile(ctx, user.ProfileID)
	if err != nil {
		return nil, wrap(err, "list discussions")
	}
	out := make([]domain.DiscussionDTO, 0, len(summaries))
	for i := range summaries {
		sum := &summaries[i]
		out = append(out, mapper.ToDiscussionDTO(&sum.Discussion, sum.ChatCount, sum.LastChat))
	}
	return out, nil
}

func (s *DiscussionService) Create(ctx context.Context, name string) (*domain.DiscussionDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	discussion := &domain.Discussion{Name: name, ProfileID: user.ProfileID}
	if err := s.discussionRepo.Create(ctx, discussion); err != nil {
		return nil, wrap(err, "create discussion")
	}
	dto := mapper.ToDiscussionDTO(discussion, 0, nil)
	return &dto, nil
}

// Get returns a discussion with its chat count and latest chat
func (s *DiscussionService) Get(ctx context.Context, id int64) (*domain.DiscussionDTO, error) {
	discussion, err := s.own(ctx, id)
	if err != nil {
		return nil, err
	}
	chats, err := s.discussionRepo.ListChats(ctx, id)
	if err != nil {
		return nil, wrap(err, "list chats")
	}
	var last *domain.Chat
	if len(chats) > 0 {
		last = &chats[len(chats)-1]
	}
	dto := mapper.ToDiscussionDTO(discussion, len(chats), last)
	return &dto, nil
}

func (s *DiscussionService) Rename(ctx context.Context, id int64, name string) (*domain.DiscussionDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.own(ctx, id); err != nil {
		return nil, err
	}
	if err := s.discussionRepo.Rename(ctx, id, name); err != nil {
		return nil, wrap(err, "rename discussion")
	}
	return s.Get(ctx, id)
}

func (s *DiscussionService) Delete(ctx context.Context, id int64) error {
	if _, err := s.own(ctx, id); err != nil {
		return err
	}
	if err := s.discussionRepo.Delete(ctx, id); err != nil {
		return wrap(err, "delete discussion")
	}
	s.logger.Info("discussion deleted", zap.Int64("discussion_id", id))
	return nil
}

// Chats returns the turns of a discussion, oldest first
func (s *DiscussionService) Chats(ctx context.Context, id int64) ([]domain.ChatDTO, error) {
	if _, err := s.own(ctx, id); err != nil {
		return nil, err
	}
	chats, err := s.discussionRepo.ListChats(ctx, id)
	if err != nil {
		return nil, wrap(err, "list chats")
	}
	return mapper.ToChatDTOs(chats), nil
}

func (s *DiscussionService) AddChat(ctx context.Context, id int64, req *domain.SendChatRequest) (*domain.ChatDTO, error) {
	if _, err := s.own(ctx, id); err != nil {
		return nil, err
	}
	chat := &domain.Chat{DiscussionID: id, Content: req.Content, IsAI: req.IsAI}
	if err := s.discussionRepo.CreateChat(ctx, chat); err != nil {
		return nil, wrap(err, "create chat")
	}
	dto := mapper.ToChatDTO(chat)
	return &dto, nil
}

func (s *DiscussionService) DeleteChat(ctx context.Context, chatID int64) error {
	chat, err := s.discussionRepo.GetChat(ctx, chatID)
	if err != nil {
		return wrap(err, "get chat")
	}
	if _, err := s.own(ctx, chat.DiscussionID); err != nil {
		return err
	}
	if err := s.discussionRepo.DeleteChat(ctx, chatID); err != nil {
		return wrap(err, "delete chat")
	}
	return nil
}
