package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pulse-crm/crm-api/internal/analytics"
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
	"github.com/pulse-crm/crm-api/internal/repository"
	"go.uber.org/zap"
)

type DealService struct {
	dealRepo *repository.DealRepository
	scope    *repository.ScopeResolver
	logger   *zap.Logger
}

func NewDealService(
	dealRepo *repository.DealRepository,
	scope *repository.ScopeResolver,
	logger *zap.Logger,
) *DealService {
	return &DealService{
		dealRepo: dealRepo,
		scope:    scope,
		logger:   logger,
	}
}

func (s *DealService) load(ctx context.Context, id int64) (*domain.Deal, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get deal")
	}
	if err := ownedByCompany(ctx, s.scope, user.CompanyID, deal.ProfileID); err != nil {
		return nil, err
	}
	return deal, nil
}

// references rejects a contact or product outside the caller's company
func (s *DealService) references(ctx context.Context, companyID int64, contactID, productID *int64) error {
	if err := referencesInCompany(ctx, s.scope, companyID, repository.ContactRef, contactID); err != nil {
		return err
	}
	return referencesInCompany(ctx, s.scope, companyID, repository.ProductRef, productID)
}

func (s *DealService) Create(ctx context.Context, req *domain.CreateDealRequest) (*domain.DealDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	owner := user.ProfileID
	if req.ProfileID != nil && *req.ProfileID != owner {
		if err := ownedByCompany(ctx, s.scope, user.CompanyID, *req.ProfileID); err != nil {
			return nil, fmt.Errorf("deal owner %d: %w", *req.ProfileID, ErrInvalidInput)
		}
		owner = *req.ProfileID
	}

	stage := req.Stage
	if stage == "" {
		stage = domain.DealStageLead
	}
	if !stage.IsValid() {
		return nil, fmt.Errorf("unknown stage %q: %w", stage, ErrInvalidInput)
	}

	if err := s.references(ctx, user.CompanyID, req.ContactID, req.ProductID); err != nil {
		return nil, err
	}

	deal := &domain.Deal{
		Title:       strings.TrimSpace(req.Title),
		Value:       req.Value,
		Stage:       stage,
		Probability: req.Probability,
		ProfileID:   owner,
		ContactID:   req.ContactID,
		ProductID:   req.ProductID,
		Notes:       req.Notes,
	}
	if req.ExpectedCloseDate != "" {
		date, err := mapper.ParseDate(req.ExpectedCloseDate)
		if err != nil {
			return nil, fmt.Errorf("expected close date: %w", ErrInvalidInput)
		}
		deal.ExpectedCloseDate = date
	}

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, wrap(err, "create deal")
	}

	s.logger.Info("deal created",
		zap.Int64("deal_id", deal.ID),
		zap.Int64("owner_id", owner),
		zap.String("stage", string(stage)),
	)

	dto := mapper.ToDealDTO(deal)
	return &dto, nil
}

// GetByID returns a deal with its owner, contact, product, interactions and tasks
func (s *DealService) GetByID(ctx context.Context, id int64) (*domain.DealDetailDTO, error) {
	deal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToDealDetailDTO(deal)
	return &dto, nil
}

// List returns the company's deals, optionally restricted to one stage
func (s *DealService) List(ctx context.Context, stage domain.DealStage) ([]domain.DealDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	var deals []domain.Deal
	if stage == "" {
		deals, err = s.dealRepo.ListByCompany(ctx, user.CompanyID)
	} else {
		if !stage.IsValid() {
			return nil, fmt.Errorf("unknown stage %q: %w", stage, ErrInvalidInput)
		}
		deals, err = s.dealRepo.ListByStage(ctx, user.CompanyID, stage)
	}
	if err != nil {
		return nil, wrap(err, "list deals")
	}
	return mapper.ToDealDTOs(deals), nil
}

func (s *DealService) Search(ctx context.Context, q string, limit int) ([]domain.DealDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return []domain.DealDTO{}, nil
	}
	deals, err := s.dealRepo.Search(ctx, user.CompanyID, q, limit)
	if err != nil {
		return nil, wrap(err, "search deals")
	}
	return mapper.ToDealDTOs(deals), nil
}

func (s *DealService) Update(ctx context.Context, id int64, req *domain.UpdateDealRequest) (*domain.DealDetailDTO, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.references(ctx, user.CompanyID, req.ContactID, req.ProductID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"updated_at": time.Now().UTC()}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Value != nil {
		fields["value"] = *req.Value
	}
	if req.Stage != nil {
		if !req.Stage.IsValid() {
			return nil, fmt.Errorf("unknown stage %q: %w", *req.Stage, ErrInvalidInput)
		}
		fields["stage"] = *req.Stage
	}
	if req.Probability != nil {
		fields["probability"] = *req.Probability
	}
	if req.ContactID != nil {
		fields["contact_id"] = *req.ContactID
	}
	if req.ProductID != nil {
		fields["product_id"] = *req.ProductID
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.ExpectedCloseDate != nil {
		date, err := mapper.ParseDate(*req.ExpectedCloseDate)
		if err != nil {
			return nil, fmt.Errorf("expected close date: %w", ErrInvalidInput)
		}
		fields["expected_close_date"] = date
	}

	if err := s.dealRepo.Update(ctx, id, fields); err != nil {
		return nil, wrap(err, "update deal")
	}

	if req.Stage != nil && *req.Stage != existing.Stage {
		s.logger.Info("deal stage changed",
			zap.Int64("deal_id", id),
			zap.String("from", string(existing.Stage)),
			zap.String("to", string(*req.Stage)),
		)
	}
	return s.GetByID(ctx, id)
}

func (s *DealService) Delete(ctx context.Context, id int64) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.dealRepo.Delete(ctx, id); err != nil {
		return wrap(err, "delete deal")
	}
	s.logger.Info("deal deleted", zap.Int64("deal_id", id))
	return nil
}

// PipelineStats returns one bucket per stage and the pipeline summary
func (s *DealService) PipelineStats(ctx context.Context) (*domain.PipelineStatsDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	deals, err := s.dealRepo.ListByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, wrap(err, "list deals")
	}
	stats := analytics.PipelineStats(deals)
	return &stats, nil
}

func (s *DealService) Analytics(ctx context.Context) (*domain.DealAnalyticsDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	deals, err := s.dealRepo.ListByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, wrap(err, "list deals")
	}
	result := analytics.DealAnalytics(deals)
	return &result, nil
}
