package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/pulse-crm/crm-api/internal/analytics"
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
	"github.com/pulse-crm/crm-api/internal/repository"
	"go.uber.org/zap"
)

// MessageService posts room messages and tracks which profiles have seen them
type MessageService struct {
	messageRepo *repository.MessageRepository
	viewRepo    *repository.ViewRepository
	roomRepo    *repository.RoomRepository
	fileRepo    *repository.FileRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewMessageService(
	messageRepo *repository.MessageRepository,
	viewRepo *repository.ViewRepository,
	roomRepo *repository.RoomRepository,
	fileRepo *repository.FileRepository,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		viewRepo:    viewRepo,
		roomRepo:    roomRepo,
		fileRepo:    fileRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// requireMember reports a room the profile does not belong to as missing
func requireMember(ctx context.Context, rooms *repository.RoomRepository, roomID, profileID int64) error {
	ok, err := rooms.IsMember(ctx, roomID, profileID)
	if err != nil {
		return wrap(err, "check room membership")
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// List returns the last limit messages of a room, oldest first
func (s *MessageService) List(ctx context.Context, roomID int64, limit int) ([]domain.MessageDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.roomRepo, roomID, user.ProfileID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListPage(ctx, roomID, limit)
	if err != nil {
		return nil, wrap(err, "list messages")
	}
	return mapper.ToMessageDTOs(messages), nil
}

// Send posts a message to a room the caller belongs to
func (s *MessageService) Send(ctx context.Context, roomID int64, req *domain.SendMessageRequest) (*domain.MessageDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.roomRepo, roomID, user.ProfileID); err != nil {
		return nil, err
	}
	if req.FileID != nil {
		if _, err := s.fileRepo.GetByID(ctx, *req.FileID); err != nil {
			return nil, wrap(err, "get attached file")
		}
	}

	message := &domain.Message{
		RoomID:   roomID,
		SenderID: user.ProfileID,
		Content:  req.Content,
		ReplyTo:  req.ReplyTo,
		FileID:   req.FileID,
		SendAt:   s.now().UTC(),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, wrap(err, "send message")
	}

	s.logger.Debug("message sent",
		zap.Int64("message_id", message.ID),
		zap.Int64("room_id", roomID),
		zap.Int64("sender_id", user.ProfileID),
	)

	return s.get(ctx, message.ID)
}

func (s *MessageService) get(ctx context.Context, id int64) (*domain.MessageDTO, error) {
	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get message")
	}
	dto := mapper.ToMessageDTO(message)
	return &dto, nil
}

// own loads a message sent by the caller
func (s *MessageService) own(ctx context.Context, id int64) (*domain.Message, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get message")
	}
	if err := requireMember(ctx, s.roomRepo, message.RoomID, user.ProfileID); err != nil {
		return nil, err
	}
	if message.SenderID != user.ProfileID {
		return nil, ErrForbidden
	}
	return message, nil
}

// Update replaces the content of the caller's own message
func (s *MessageService) Update(ctx context.Context, id int64, content string) (*domain.MessageDTO, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.own(ctx, id); err != nil {
		return nil, err
	}
	if err := s.messageRepo.UpdateContent(ctx, id, content); err != nil {
		return nil, wrap(err, "update message")
	}
	return s.get(ctx, id)
}

// AttachFile links an uploaded file to the caller's own message
func (s *MessageService) AttachFile(ctx context.Context, id, fileID int64) (*domain.MessageDTO, error) {
	if _, err := s.own(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.fileRepo.GetByID(ctx, fileID); err != nil {
		return nil, wrap(err, "get file")
	}
	if err := s.messageRepo.AttachFile(ctx, id, fileID); err != nil {
		return nil, wrap(err, "attach file")
	}
	return s.get(ctx, id)
}

func (s *MessageService) Delete(ctx context.Context, id int64) error {
	if _, err := s.own(ctx, id); err != nil {
		return err
	}
	if err := s.messageRepo.Delete(ctx, id); err != nil {
		return wrap(err, "delete message")
	}
	s.logger.Info("message deleted", zap.Int64("message_id", id))
	return nil
}

// MarkViewed records that profileID has seen messageID. Marking a message twice
// is not an error.
func (s *MessageService) MarkViewed(ctx context.Context, messageID, profileID int64) error {
	_, err := s.viewRepo.Insert(ctx, []domain.View{{
		MessageID: messageID,
		ProfileID: profileID,
		SeenAt:    s.now().UTC(),
	}})
	return wrap(err, "mark message viewed")
}

// MarkViewedBulk records views for every id not yet viewed by profileID and
// returns how many views were written. Repeated calls write nothing.
func (s *MessageService) MarkViewedBulk(ctx context.Context, messageIDs []int64, profileID int64) (int64, error) {
	ids := slices.Clone(messageIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	viewed, err := s.viewRepo.ViewedMessageIDs(ctx, profileID, ids)
	if err != nil {
		return 0, wrap(err, "load views")
	}
	ids = slices.DeleteFunc(ids, func(id int64) bool {
		_, found := slices.BinarySearch(viewed, id)
		return found
	})
	if len(ids) == 0 {
		return 0, nil
	}

	seenAt := s.now().UTC()
	views := make([]domain.View, len(ids))
	for i, id := range ids {
		views[i] = domain.View{MessageID: id, ProfileID: profileID, SeenAt: seenAt}
	}
	written, err := s.viewRepo.Insert(ctx, views)
	if err != nil {
		return 0, wrap(err, "mark messages viewed")
	}
	return written, nil
}

// MarkRoomViewed marks messages viewed on behalf of a room member. Ids that do
// not name a message of roomID are ignored.
func (s *MessageService) MarkRoomViewed(ctx context.Context, roomID int64, messageIDs []int64) (int64, error) {
	user, err := actor(ctx)
	if err != nil {
		return 0, err
	}
	if err := requireMember(ctx, s.roomRepo, roomID, user.ProfileID); err != nil {
		return 0, err
	}
	inRoom, err := s.messageRepo.IDsInRoom(ctx, roomID, messageIDs)
	if err != nil {
		return 0, wrap(err, "filter room messages")
	}
	return s.MarkViewedBulk(ctx, inRoom, user.ProfileID)
}

// UnreadCount counts messages in a room that profileID neither sent nor viewed
func (s *MessageService) UnreadCount(ctx context.Context, roomID, profileID int64) (int, error) {
	candidates, err := s.messageRepo.IDsNotSentBy(ctx, roomID, profileID)
	if err != nil {
		return 0, wrap(err, "list room messages")
	}
	if len(candidates) == 0 {
		return 0, nil
	}
	viewed, err := s.viewRepo.ViewedInRoom(ctx, roomID, profileID)
	if err != nil {
		return 0, wrap(err, "list views")
	}
	return analytics.UnreadCount(candidates, viewed), nil
}

// RoomUnread is UnreadCount for the caller, restricted to rooms they belong to
func (s *MessageService) RoomUnread(ctx context.Context, roomID int64) (int, error) {
	user, err := actor(ctx)
	if err != nil {
		return 0, err
	}
	if err := requireMember(ctx, s.roomRepo, roomID, user.ProfileID); err != nil {
		return 0, err
	}
	return s.UnreadCount(ctx, roomID, user.ProfileID)
}

// Summary reports the profile's unread count in a room and the number of
// messages posted there since the start of today
func (s *MessageService) Summary(ctx context.Context, roomID, profileID int64) (domain.MessagesSummaryDTO, error) {
	unread, err := s.UnreadCount(ctx, roomID, profileID)
	if err != nil {
		return domain.MessagesSummaryDTO{}, err
	}
	today, err := s.messageRepo.CountSince(ctx, roomID, analytics.Today(s.now().UTC()))
	if err != nil {
		return domain.MessagesSummaryDTO{}, wrap(err, "count messages")
	}
	return domain.MessagesSummaryDTO{UnreadCount: unread, TotalToday: int(today)}, nil
}
