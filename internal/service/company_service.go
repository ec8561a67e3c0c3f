package service

import (
	"context"
	"strings"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
	"github.com/pulse-crm/crm-api/internal/repository"
	"go.uber.org/zap"
)

type CompanyService struct {
	companyRepo *repository.CompanyRepository
	logger      *zap.Logger
}

func NewCompanyService(companyRepo *repository.CompanyRepository, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		logger:      logger,
	}
}

// GetByID returns a company. Callers outside the company get ErrNotFound.
func (s *CompanyService) GetByID(ctx context.Context, id int64) (*domain.CompanyDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if !user.CanAccessCompany(id) {
		return nil, ErrNotFound
	}
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get company")
	}
	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

// GetCurrent returns the caller's company
func (s *CompanyService) GetCurrent(ctx context.Context) (*domain.CompanyDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, user.CompanyID)
}

// UpdateCurrent renames or re-classifies the caller's company. Admins only.
func (s *CompanyService) UpdateCurrent(ctx context.Context, req *domain.UpdateCompanyRequest) (*domain.CompanyDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, ErrForbidden
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Industry != nil {
		fields["industry"] = *req.Industry
	}
	if len(fields) > 0 {
		if err := s.companyRepo.Update(ctx, user.CompanyID, fields); err != nil {
			return nil, wrap(err, "update company")
		}
		s.logger.Info("company updated",
			zap.Int64("company_id", user.CompanyID),
			zap.Int64("profile_id", user.ProfileID),
		)
	}
	return s.GetByID(ctx, user.CompanyID)
}
