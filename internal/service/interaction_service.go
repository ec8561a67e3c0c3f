package service

import (
	"context"
	"strings"
	"time"

	"github.com/pulse-crm/crm-api/internal/analytics"
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
	"github.com/pulse-crm/crm-api/internal/repository"
	"go.uber.org/zap"
)

type InteractionService struct {
	interactionRepo *repository.InteractionRepository
	dealRepo        *repository.DealRepository
	scope           *repository.ScopeResolver
	logger          *zap.Logger
	now             func() time.Time
	location        *time.Location
}

func NewInteractionService(
	interactionRepo *repository.InteractionRepository,
	dealRepo *repository.DealRepository,
	scope *repository.ScopeResolver,
	location *time.Location,
	logger *zap.Logger,
) *InteractionService {
	if location == nil {
		location = time.UTC
	}
	return &InteractionService{
		interactionRepo: interactionRepo,
		dealRepo:        dealRepo,
		scope:           scope,
		logger:          logger,
		now:             time.Now,
		location:        location,
	}
}

func (s *InteractionService) load(ctx context.Context, id int64) (*domain.Interaction, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	interaction, err := s.interactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get interaction")
	}
	if err := ownedByCompany(ctx, s.scope, user.CompanyID, interaction.CreatedBy); err != nil {
		return nil, err
	}
	return interaction, nil
}

func (s *InteractionService) Create(ctx context.Context, req *domain.CreateInteractionRequest) (*domain.InteractionDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if req.DealID != nil {
		if _, err := s.deal(ctx, user.CompanyID, *req.DealID); err != nil {
			return nil, err
		}
	}
	if err := referencesInCompany(ctx, s.scope, user.CompanyID, repository.ContactRef, req.ContactID); err != nil {
		return nil, err
	}

	interaction := &domain.Interaction{
		Type:      strings.ToLower(strings.TrimSpace(req.Type)),
		Note:      req.Note,
		DealID:    req.DealID,
		ContactID: req.ContactID,
		CreatedBy: user.ProfileID,
	}
	if err := s.interactionRepo.Create(ctx, interaction); err != nil {
		return nil, wrap(err, "create interaction")
	}

	s.logger.Info("interaction logged",
		zap.Int64("interaction_id", interaction.ID),
		zap.String("type", interaction.Type),
	)
	dto := mapper.ToInteractionDTO(interaction)
	return &dto, nil
}

func (s *InteractionService) deal(ctx context.Context, companyID, dealID int64) (*domain.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return nil, wrap(err, "get deal")
	}
	if err := ownedByCompany(ctx, s.scope, companyID, deal.ProfileID); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *InteractionService) GetByID(ctx context.Context, id int64) (*domain.InteractionDTO, error) {
	interaction, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToInteractionDTO(interaction)
	return &dto, nil
}

func (s *InteractionService) List(ctx context.Context) ([]domain.InteractionDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	interactions, err := s.interactionRepo.ListByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, wrap(err, "list interactions")
	}
	return mapper.ToInteractionDTOs(interactions), nil
}

// ListByDeal returns a deal's interactions, newest first
func (s *InteractionService) ListByDeal(ctx context.Context, dealID int64) ([]domain.InteractionDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.deal(ctx, user.CompanyID, dealID); err != nil {
		return nil, err
	}
	interactions, err := s.interactionRepo.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, wrap(err, "list interactions")
	}
	return mapper.ToInteractionDTOs(interactions), nil
}

func (s *InteractionService) Update(ctx context.Context, id int64, req *domain.UpdateInteractionRequest) (*domain.InteractionDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if req.Type != nil {
		fields["type"] = strings.ToLower(strings.TrimSpace(*req.Type))
	}
	if req.Note != nil {
		fields["note"] = *req.Note
	}
	if len(fields) > 0 {
		if err := s.interactionRepo.Update(ctx, id, fields); err != nil {
			return nil, wrap(err, "update interaction")
		}
	}
	return s.GetByID(ctx, id)
}

func (s *InteractionService) Delete(ctx context.Context, id int64) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.interactionRepo.Delete(ctx, id); err != nil {
		return wrap(err, "delete interaction")
	}
	s.logger.Info("interaction deleted", zap.Int64("interaction_id", id))
	return nil
}

func (s *InteractionService) Stats(ctx context.Context) (*domain.InteractionStatsDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	interactions, err := s.interactionRepo.ListByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, wrap(err, "list interactions")
	}
	stats := analytics.InteractionStats(interactions, s.now().UTC())
	return &stats, nil
}

func (s *InteractionService) Analytics(ctx context.Context) (*domain.InteractionAnalyticsDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	interactions, err := s.interactionRepo.ListByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, wrap(err, "list interactions")
	}
	result := analytics.InteractionAnalytics(interactions, s.location)
	return &result, nil
}
