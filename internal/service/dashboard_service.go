package service

import (
	"context"
	"slices"
	"time"

	"github.com/pulse-crm/crm-api/internal/analytics"
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
	"github.com/pulse-crm/crm-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type DashboardService struct {
	profileRepo     *repository.ProfileRepository
	contactRepo     *repository.ContactRepository
	dealRepo        *repository.DealRepository
	taskRepo        *repository.TaskRepository
	interactionRepo *repository.InteractionRepository
	messageRepo     *repository.MessageRepository
	rooms           *RoomService
	logger          *zap.Logger
	now             func() time.Time
}

func NewDashboardService(
	profileRepo *repository.ProfileRepository,
	contactRepo *repository.ContactRepository,
	dealRepo *repository.DealRepository,
	taskRepo *repository.TaskRepository,
	interactionRepo *repository.InteractionRepository,
	messageRepo *repository.MessageRepository,
	rooms *RoomService,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		profileRepo:     profileRepo,
		contactRepo:     contactRepo,
		dealRepo:        dealRepo,
		taskRepo:        taskRepo,
		interactionRepo: interactionRepo,
		messageRepo:     messageRepo,
		rooms:           rooms,
		logger:          logger,
		now:             time.Now,
	}
}

// visibleProfiles returns the profiles whose work the caller may see on the
// dashboard: the whole company for admins, only themselves otherwise
func (s *DashboardService) visibleProfiles(ctx context.Context, companyID, profileID int64, admin bool) ([]domain.Profile, error) {
	if admin {
		return s.profileRepo.ListByCompany(ctx, companyID)
	}
	self, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return []domain.Profile{*self}, nil
}

// Overview builds the caller's dashboard. Any failing fetch fails the whole page.
func (s *DashboardService) Overview(ctx context.Context) (*domain.DashboardDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	profiles, err := s.visibleProfiles(ctx, user.CompanyID, user.ProfileID, user.IsAdmin())
	if err != nil {
		return nil, wrap(err, "list profiles")
	}
	ids := make([]int64, 0, len(profiles))
	var viewer *domain.ProfileDTO
	for i := range profiles {
		ids = append(ids, profiles[i].ID)
		if profiles[i].ID == user.ProfileID {
			dto := mapper.ToProfileDTO(&profiles[i])
			viewer = &dto
		}
	}
	slices.Sort(ids)
	visible := func(id int64) bool {
		_, ok := slices.BinarySearch(ids, id)
		return ok
	}

	var (
		contacts     []domain.Contact
		tasks        []domain.Task
		deals        []domain.Deal
		interactions []domain.Interaction
		rooms        []domain.RoomOverviewDTO
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		all, err := s.contactRepo.ListByCompany(gctx, user.CompanyID)
		if err != nil {
			return wrap(err, "list contacts")
		}
		contacts = slices.DeleteFunc(all, func(c domain.Contact) bool { return !visible(c.CreatedBy) })
		return nil
	})
	g.Go(func() error {
		var err error
		tasks, err = s.taskRepo.ListOpenByProfiles(gctx, ids)
		return wrap(err, "list tasks")
	})
	g.Go(func() error {
		var err error
		deals, err = s.dealRepo.ListOpenByProfiles(gctx, ids)
		return wrap(err, "list deals")
	})
	g.Go(func() error {
		all, err := s.interactionRepo.ListByCompany(gctx, user.CompanyID)
		if err != nil {
			return wrap(err, "list interactions")
		}
		interactions = slices.DeleteFunc(all, func(i domain.Interaction) bool { return !visible(i.CreatedBy) })
		return nil
	})
	g.Go(func() error {
		var err error
		rooms, err = s.rooms.overviewFor(gctx, user.ProfileID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	roomIDs := make([]int64, len(rooms))
	for i := range rooms {
		roomIDs[i] = rooms[i].ID
	}
	totalMessages, err := s.messageRepo.CountByRooms(ctx, roomIDs)
	if err != nil {
		return nil, wrap(err, "count messages")
	}

	now := s.now().UTC()
	contactTimes := make([]time.Time, len(contacts))
	for i := range contacts {
		contactTimes[i] = contacts[i].CreatedAt
	}
	interactionTimes := make([]time.Time, len(interactions))
	for i := range interactions {
		interactionTimes[i] = interactions[i].CreatedAt
	}
	var dealsValue float64
	for i := range deals {
		dealsValue += deals[i].Value
	}

	return &domain.DashboardDTO{
		User:     viewer,
		Users:    mapper.ToProfileDTOs(profiles),
		Contacts: mapper.ToContactDTOs(contacts),
		Tasks:    mapper.ToTaskDTOs(analytics.OpenTasksByPriority(tasks)),
		Deals:    mapper.ToDealDTOs(deals),
		Rooms:    rooms,
		Stats: domain.DashboardStatsDTO{
			ContactsThisMonth:    analytics.CountSince(contactTimes, analytics.MonthStart(now)),
			TotalInteractions:    len(interactions),
			InteractionsThisWeek: analytics.CountSince(interactionTimes, analytics.Since(now, 7)),
			TotalMessages:        totalMessages,
			TotalRooms:           len(rooms),
			TotalDeals:           len(deals),
			TotalDealsValue:      dealsValue,
		},
	}, nil
}
