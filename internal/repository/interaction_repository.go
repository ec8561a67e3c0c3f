package repository

import (
	"context"
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type InteractionRepository struct {
	db    *gorm.DB
	scope *ScopeResolver
}

func NewInteractionRepository(db *gorm.DB, scope *ScopeResolver) *InteractionRepository {
	return &InteractionRepository{db: db, scope: scope}
}

const interactionDefaultOrder = "interactions.created_at DESC, interactions.interaction_id DESC"

func (r *InteractionRepository) Create(ctx context.Context, interaction *domain.Interaction) error {
	return r.db.WithContext(ctx).Create(interaction).Error
}

func (r *InteractionRepository) GetByID(ctx context.Context, id int64) (*domain.Interaction, error) {
	var interaction domain.Interaction
	if err := r.db.WithContext(ctx).First(&interaction, "interaction_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &interaction, nil
}

// ListByCompany returns interactions recorded by the tenant's profiles, newest first
func (r *InteractionRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.Interaction, error) {
	return r.listScoped(ctx, companyID, nil)
}

// ListSince returns the tenant's interactions created at or after since
func (r *InteractionRepository) ListSince(ctx context.Context, companyID int64, since time.Time) ([]domain.Interaction, error) {
	return r.listScoped(ctx, companyID, func(q *gorm.DB) *gorm.DB {
		return q.Where("interactions.created_at >= ?", since)
	})
}

func (r *InteractionRepository) listScoped(ctx context.Context, companyID int64, filter func(*gorm.DB) *gorm.DB) ([]domain.Interaction, error) {
	query, ok, err := r.scope.Owned(ctx, companyID, InteractionOwner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Interaction{}, nil
	}
	if filter != nil {
		query = filter(query)
	}

	var interactions []domain.Interaction
	err = query.Order(interactionDefaultOrder).Find(&interactions).Error
	return interactions, err
}

// ListByDeal returns the interactions attached to a deal, newest first
func (r *InteractionRepository) ListByDeal(ctx context.Context, dealID int64) ([]domain.Interaction, error) {
	var interactions []domain.Interaction
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order(interactionDefaultOrder).
		Find(&interactions).Error
	return interactions, err
}

// CountByProfile counts interactions recorded by one profile
func (r *InteractionRepository) CountByProfile(ctx context.Context, profileID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Interaction{}).
		Where("created_by = ?", profileID).
		Count(&count).Error
	return count, err
}

func (r *InteractionRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return affected(r.db.WithContext(ctx).
		Model(&domain.Interaction{}).
		Where("interaction_id = ?", id).
		Updates(fields))
}

func (r *InteractionRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.Interaction{}, "interaction_id = ?", id))
}
