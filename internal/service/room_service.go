package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
	"github.com/pulse-crm/crm-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// overviewConcurrency bounds the per-room queries issued by Overview
const overviewConcurrency = 8

type RoomService struct {
	roomRepo    *repository.RoomRepository
	messageRepo *repository.MessageRepository
	messages    *MessageService
	scope       *repository.ScopeResolver
	logger      *zap.Logger
}

func NewRoomService(
	roomRepo *repository.RoomRepository,
	messageRepo *repository.MessageRepository,
	messages *MessageService,
	scope *repository.ScopeResolver,
	logger *zap.Logger,
) *RoomService {
	return &RoomService{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		messages:    messages,
		scope:       scope,
		logger:      logger,
	}
}

// Overview lists the caller's rooms with the latest message and unread count
// of each, most recently active first. A failed unread count is logged and
// reported as 0 for that room.
func (s *RoomService) Overview(ctx context.Context) ([]domain.RoomOverviewDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	return s.overviewFor(ctx, user.ProfileID)
}

func (s *RoomService) overviewFor(ctx context.Context, profileID int64) ([]domain.RoomOverviewDTO, error) {
	rooms, err := s.roomRepo.ListForProfile(ctx, profileID)
	if err != nil {
		return nil, wrap(err, "list rooms")
	}

	out := make([]domain.RoomOverviewDTO, len(rooms))
	activity := make([]time.Time, len(rooms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewConcurrency)
	for i := range rooms {
		room := &rooms[i]
		out[i] = domain.RoomOverviewDTO{RoomDTO: mapper.ToRoomDTO(room)}
		activity[i] = room.CreatedAt
		g.Go(func() error {
			latest, err := s.messageRepo.Latest(gctx, room.ID)
			if err != nil {
				return wrap(err, "load latest message")
			}
			if latest != nil {
				dto := mapper.ToMessageDTO(latest)
				out[i].LatestMessage = &dto
				activity[i] = latest.SendAt
			}

			unread, err := s.messages.UnreadCount(gctx, room.ID, profileID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn("failed to count unread messages",
					zap.Int64("room_id", room.ID),
					zap.Int64("profile_id", profileID),
					zap.Error(err),
				)
				unread = 0
			}
			out[i].UnreadCount = unread
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return activity[b].Compare(activity[a])
	})
	sorted := make([]domain.RoomOverviewDTO, len(out))
	for i, idx := range order {
		sorted[i] = out[idx]
	}
	return sorted, nil
}

// Create opens a room with the caller and the requested members. Every member
// must belong to the caller's company.
func (s *RoomService) Create(ctx context.Context, req *domain.CreateRoomRequest) (*domain.RoomDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	members := []int64{user.ProfileID}
	for _, id := range req.MemberIDs {
		if id == user.ProfileID {
			continue
		}
		if err := ownedByCompany(ctx, s.scope, user.CompanyID, id); err != nil {
			return nil, ErrInvalidInput
		}
		members = append(members, id)
	}
	slices.Sort(members)
	members = slices.Compact(members)

	room := &domain.Room{
		Name:      strings.TrimSpace(req.Name),
		CreatedBy: user.ProfileID,
	}
	if err := s.roomRepo.Create(ctx, room, members); err != nil {
		return nil, wrap(err, "create room")
	}

	s.logger.Info("room created",
		zap.Int64("room_id", room.ID),
		zap.Int("members", len(members)),
	)
	dto := mapper.ToRoomDTO(room)
	return &dto, nil
}

// room loads a room the caller belongs to
func (s *RoomService) room(ctx context.Context, id, profileID int64) (*domain.Room, error) {
	if err := requireMember(ctx, s.roomRepo, id, profileID); err != nil {
		return nil, err
	}
	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get room")
	}
	return room, nil
}

// Delete removes a room with its messages. Only the creator may delete it.
func (s *RoomService) Delete(ctx context.Context, id int64) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}
	room, err := s.room(ctx, id, user.ProfileID)
	if err != nil {
		return err
	}
	if room.CreatedBy != user.ProfileID {
		return ErrForbidden
	}
	if err := s.roomRepo.Delete(ctx, id); err != nil {
		return wrap(err, "delete room")
	}
	s.logger.Info("room deleted", zap.Int64("room_id", id), zap.Int64("by", user.ProfileID))
	return nil
}

// Leave removes the caller from a room
func (s *RoomService) Leave(ctx context.Context, id int64) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}
	if err := s.roomRepo.RemoveMember(ctx, id, user.ProfileID); err != nil {
		return wrap(err, "leave room")
	}
	s.logger.Info("room left", zap.Int64("room_id", id), zap.Int64("profile_id", user.ProfileID))
	return nil
}

func (s *RoomService) Members(ctx context.Context, id int64) ([]domain.MemberDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.room(ctx, id, user.ProfileID); err != nil {
		return nil, err
	}
	members, err := s.roomRepo.ListMembers(ctx, id)
	if err != nil {
		return nil, wrap(err, "list members")
	}
	out := make([]domain.MemberDTO, 0, len(members))
	for i := range members {
		out = append(out, mapper.ToMemberDTO(&members[i]))
	}
	return out, nil
}

// AddMember lets any member invite a colleague of the same company
func (s *RoomService) AddMember(ctx context.Context, id, profileID int64) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}
	if _, err := s.room(ctx, id, user.ProfileID); err != nil {
		return err
	}
	if err := ownedByCompany(ctx, s.scope, user.CompanyID, profileID); err != nil {
		return err
	}
	if err := s.roomRepo.AddMember(ctx, id, profileID); err != nil {
		return wrap(err, "add member")
	}
	s.logger.Info("room member added", zap.Int64("room_id", id), zap.Int64("profile_id", profileID))
	return nil
}

// RemoveMember removes a member. The room creator may remove anyone; others
// only themselves.
func (s *RoomService) RemoveMember(ctx context.Context, id, profileID int64) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}
	room, err := s.room(ctx, id, user.ProfileID)
	if err != nil {
		return err
	}
	if profileID != user.ProfileID && room.CreatedBy != user.ProfileID {
		return ErrForbidden
	}
	if err := s.roomRepo.RemoveMember(ctx, id, profileID); err != nil {
		return wrap(err, "remove member")
	}
	s.logger.Info("room member removed", zap.Int64("room_id", id), zap.Int64("profile_id", profileID))
	return nil
}
