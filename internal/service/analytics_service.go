package service

import (
	"context"
	"time"

	"github.com/pulse-crm/crm-api/internal/analytics"
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
	"github.com/pulse-crm/crm-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AnalyticsService assembles the company analytics page
type AnalyticsService struct {
	companyRepo     *repository.CompanyRepository
	contactRepo     *repository.ContactRepository
	dealRepo        *repository.DealRepository
	interactionRepo *repository.InteractionRepository
	productRepo     *repository.ProductRepository
	taskRepo        *repository.TaskRepository
	profileRepo     *repository.ProfileRepository
	messages        *MessageService
	location        *time.Location
	logger          *zap.Logger
	now             func() time.Time
}

func NewAnalyticsService(
	companyRepo *repository.CompanyRepository,
	contactRepo *repository.ContactRepository,
	dealRepo *repository.DealRepository,
	interactionRepo *repository.InteractionRepository,
	productRepo *repository.ProductRepository,
	taskRepo *repository.TaskRepository,
	profileRepo *repository.ProfileRepository,
	messages *MessageService,
	location *time.Location,
	logger *zap.Logger,
) *AnalyticsService {
	if location == nil {
		location = time.UTC
	}
	return &AnalyticsService{
		companyRepo:     companyRepo,
		contactRepo:     contactRepo,
		dealRepo:        dealRepo,
		interactionRepo: interactionRepo,
		productRepo:     productRepo,
		taskRepo:        taskRepo,
		profileRepo:     profileRepo,
		messages:        messages,
		location:        location,
		logger:          logger,
		now:             time.Now,
	}
}

// Company builds the analytics page of the caller's company. The fetches run
// concurrently and the first failure fails the whole page.
func (s *AnalyticsService) Company(ctx context.Context) (*domain.CompanyAnalyticsDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	var (
		company      *domain.Company
		contacts     []domain.Contact
		deals        []domain.Deal
		interactions []domain.Interaction
		products     []domain.Product
		tasks        []domain.Task
		profiles     []domain.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		company, err = s.companyRepo.GetByID(gctx, user.CompanyID)
		return wrap(err, "get company")
	})
	g.Go(func() error {
		var err error
		contacts, err = s.contactRepo.ListByCompany(gctx, user.CompanyID)
		return wrap(err, "list contacts")
	})
	g.Go(func() error {
		var err error
		deals, err = s.dealRepo.ListByCompany(gctx, user.CompanyID)
		return wrap(err, "list deals")
	})
	g.Go(func() error {
		var err error
		interactions, err = s.interactionRepo.ListByCompany(gctx, user.CompanyID)
		return wrap(err, "list interactions")
	})
	g.Go(func() error {
		var err error
		products, err = s.productRepo.ListByCompany(gctx, user.CompanyID)
		return wrap(err, "list products")
	})
	g.Go(func() error {
		var err error
		tasks, err = s.taskRepo.ListByCompany(gctx, user.CompanyID)
		return wrap(err, "list tasks")
	})
	g.Go(func() error {
		var err error
		profiles, err = s.profileRepo.ListByCompany(gctx, user.CompanyID)
		return wrap(err, "list profiles")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var messages domain.MessagesSummaryDTO
	if company.RoomID != nil {
		messages, err = s.messages.Summary(ctx, *company.RoomID, user.ProfileID)
		if err != nil {
			return nil, err
		}
	}

	creators := make(map[int64]domain.Profile, len(profiles))
	for _, p := range profiles {
		creators[p.ID] = p
	}

	now := s.now().UTC()
	page := &domain.CompanyAnalyticsDTO{
		Company:      mapper.ToCompanyDTO(company),
		Contacts:     analytics.ContactAnalytics(contacts, creators, s.location),
		Deals:        analytics.DealAnalytics(deals),
		Interactions: analytics.InteractionAnalytics(interactions, s.location),
		Products:     analytics.ProductAnalytics(products, deals),
		Tasks:        analytics.TaskAnalytics(tasks, now),
		Team:         analytics.TeamAnalytics(profiles, deals),
		Messages:     messages,
	}

	s.logger.Debug("analytics page built",
		zap.Int64("company_id", user.CompanyID),
		zap.Int("contacts", len(contacts)),
		zap.Int("deals", len(deals)),
	)
	return page, nil
}
