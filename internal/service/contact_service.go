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

type ContactService struct {
	contactRepo *repository.ContactRepository
	scope       *repository.ScopeResolver
	logger      *zap.Logger
	now         func() time.Time
}

func NewContactService(
	contactRepo *repository.ContactRepository,
	scope *repository.ScopeResolver,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		scope:       scope,
		logger:      logger,
		now:         time.Now,
	}
}

// load fetches a contact created inside the caller's company
func (s *ContactService) load(ctx context.Context, id int64) (*domain.Contact, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get contact")
	}
	if err := ownedByCompany(ctx, s.scope, user.CompanyID, contact.CreatedBy); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) Create(ctx context.Context, req *domain.CreateContactRequest) (*domain.ContactDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	contact := &domain.Contact{
		CompanyID: req.CompanyID,
		Fullname:  strings.TrimSpace(req.Fullname),
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedBy: user.ProfileID,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, wrap(err, "create contact")
	}

	s.logger.Info("contact created",
		zap.Int64("contact_id", contact.ID),
		zap.Int64("profile_id", user.ProfileID),
	)

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) GetByID(ctx context.Context, id int64) (*domain.ContactDTO, error) {
	contact, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

// List returns the contacts created by anyone in the caller's company
func (s *ContactService) List(ctx context.Context) ([]domain.ContactDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contactRepo.ListByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, wrap(err, "list contacts")
	}
	return mapper.ToContactDTOs(contacts), nil
}

func (s *ContactService) Search(ctx context.Context, q string, limit int) ([]domain.ContactDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return []domain.ContactDTO{}, nil
	}
	contacts, err := s.contactRepo.Search(ctx, user.CompanyID, q, limit)
	if err != nil {
		return nil, wrap(err, "search contacts")
	}
	return mapper.ToContactDTOs(contacts), nil
}

func (s *ContactService) Update(ctx context.Context, id int64, req *domain.UpdateContactRequest) (*domain.ContactDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.CompanyID != nil {
		fields["company_id"] = *req.CompanyID
	}
	if req.Fullname != nil {
		fields["fullname"] = strings.TrimSpace(*req.Fullname)
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if len(fields) > 0 {
		if err := s.contactRepo.Update(ctx, id, fields); err != nil {
			return nil, wrap(err, "update contact")
		}
		s.logger.Info("contact updated", zap.Int64("contact_id", id))
	}
	return s.GetByID(ctx, id)
}

func (s *ContactService) Delete(ctx context.Context, id int64) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.contactRepo.Delete(ctx, id); err != nil {
		return wrap(err, "delete contact")
	}
	s.logger.Info("contact deleted", zap.Int64("contact_id", id))
	return nil
}

// Stats counts the company's contacts and those added this month
func (s *ContactService) Stats(ctx context.Context) (*domain.ContactStatsDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contactRepo.ListByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, wrap(err, "list contacts")
	}
	stats := analytics.ContactStats(contacts, s.now().UTC())
	return &stats, nil
}
