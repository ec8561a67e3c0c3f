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
	"golang.org/x/sync/errgroup"
)

type ProfileService struct {
	profileRepo     *repository.ProfileRepository
	dealRepo        *repository.DealRepository
	taskRepo        *repository.TaskRepository
	interactionRepo *repository.InteractionRepository
	logger          *zap.Logger
}

func NewProfileService(
	profileRepo *repository.ProfileRepository,
	dealRepo *repository.DealRepository,
	taskRepo *repository.TaskRepository,
	interactionRepo *repository.InteractionRepository,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		profileRepo:     profileRepo,
		dealRepo:        dealRepo,
		taskRepo:        taskRepo,
		interactionRepo: interactionRepo,
		logger:          logger,
	}
}

// member loads a profile of the caller's company
func (s *ProfileService) member(ctx context.Context, id int64) (*domain.Profile, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get profile")
	}
	if profile.CompanyID != user.CompanyID {
		return nil, ErrNotFound
	}
	return profile, nil
}

func (s *ProfileService) GetByID(ctx context.Context, id int64) (*domain.ProfileDTO, error) {
	profile, err := s.member(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToProfileDTO(profile)
	return &dto, nil
}

// List returns every profile in the caller's company
func (s *ProfileService) List(ctx context.Context) ([]domain.ProfileDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profileRepo.ListByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, wrap(err, "list profiles")
	}
	return mapper.ToProfileDTOs(profiles), nil
}

func (s *ProfileService) Search(ctx context.Context, q string, limit int) ([]domain.ProfileDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return []domain.ProfileDTO{}, nil
	}
	profiles, err := s.profileRepo.Search(ctx, user.CompanyID, q, limit)
	if err != nil {
		return nil, wrap(err, "search profiles")
	}
	return mapper.ToProfileDTOs(profiles), nil
}

// Update edits contact details. Profiles may edit themselves; admins may edit
// anyone in their company.
func (s *ProfileService) Update(ctx context.Context, id int64, req *domain.UpdateProfileRequest) (*domain.ProfileDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.member(ctx, id); err != nil {
		return nil, err
	}
	if user.ProfileID != id && !user.IsAdmin() {
		return nil, ErrForbidden
	}

	fields := map[string]interface{}{"updated_at": time.Now().UTC()}
	if req.Fullname != nil {
		fields["fullname"] = strings.TrimSpace(*req.Fullname)
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if err := s.profileRepo.Update(ctx, id, fields); err != nil {
		return nil, wrap(err, "update profile")
	}

	s.logger.Info("profile updated", zap.Int64("profile_id", id), zap.Int64("by", user.ProfileID))
	return s.GetByID(ctx, id)
}

// UpdateRole changes a profile's role. Admins only; an admin cannot demote
// themselves.
func (s *ProfileService) UpdateRole(ctx context.Context, id int64, role domain.ProfileRole) (*domain.ProfileDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, ErrForbidden
	}
	if role != domain.ProfileRoleAdmin && role != domain.ProfileRoleUser {
		return nil, ErrInvalidInput
	}
	if _, err := s.member(ctx, id); err != nil {
		return nil, err
	}
	if id == user.ProfileID && role != domain.ProfileRoleAdmin {
		return nil, ErrConflict
	}

	if err := s.profileRepo.UpdateRole(ctx, id, role, time.Now().UTC()); err != nil {
		return nil, wrap(err, "update role")
	}

	s.logger.Info("profile role changed",
		zap.Int64("profile_id", id),
		zap.String("role", string(role)),
		zap.Int64("by", user.ProfileID),
	)
	return s.GetByID(ctx, id)
}

// TeamStats counts the caller's company profiles by role
func (s *ProfileService) TeamStats(ctx context.Context) (*domain.TeamStatsDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profileRepo.ListByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, wrap(err, "list profiles")
	}
	stats := analytics.TeamStats(profiles)
	return &stats, nil
}

// PerformanceMetrics summarizes the deals, tasks and interactions of one profile
func (s *ProfileService) PerformanceMetrics(ctx context.Context, profileID int64) (*domain.PerformanceMetricsDTO, error) {
	if _, err := s.member(ctx, profileID); err != nil {
		return nil, err
	}

	var (
		deals        []domain.Deal
		tasks        []domain.Task
		interactions int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deals, err = s.dealRepo.ListByProfile(gctx, profileID)
		return wrap(err, "list deals")
	})
	g.Go(func() error {
		var err error
		tasks, err = s.taskRepo.ListByProfile(gctx, profileID)
		return wrap(err, "list tasks")
	})
	g.Go(func() error {
		var err error
		interactions, err = s.interactionRepo.CountByProfile(gctx, profileID)
		return wrap(err, "count interactions")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.PerformanceMetricsDTO{
		ProfileID:    profileID,
		Deals:        analytics.DealPerformance(deals),
		Tasks:        analytics.TaskPerformance(tasks),
		Interactions: domain.InteractionPerformance{Total: int(interactions)},
	}, nil
}
