package repository

import (
	"context"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type DealRepository struct {
	db    *gorm.DB
	scope *ScopeResolver
}

func NewDealRepository(db *gorm.DB, scope *ScopeResolver) *DealRepository {
	return &DealRepository{db: db, scope: scope}
}

const dealDefaultOrder = "deals.updated_at DESC, deals.deal_id DESC"

func (r *DealRepository) Create(ctx context.Context, deal *domain.Deal) error {
	return r.db.WithContext(ctx).Omit("Owner", "Contact", "Product", "Interactions", "Tasks").Create(deal).Error
}

// GetByID loads a deal with its owner, contact, product, interactions and tasks
func (r *DealRepository) GetByID(ctx context.Context, id int64) (*domain.Deal, error) {
	var deal domain.Deal
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Contact").
		Preload("Product").
		Preload("Interactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("interactions.created_at DESC")
		}).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.due_date ASC")
		}).
		First(&deal, "deal_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

// ListByCompany returns the tenant's deals, most recently updated first
func (r *DealRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.Deal, error) {
	return r.listScoped(ctx, companyID, nil)
}

// ListByStage returns the tenant's deals in one pipeline stage
func (r *DealRepository) ListByStage(ctx context.Context, companyID int64, stage domain.DealStage) ([]domain.Deal, error) {
	return r.listScoped(ctx, companyID, func(q *gorm.DB) *gorm.DB {
		return q.Where("deals.stage = ?", stage)
	})
}

func (r *DealRepository) Search(ctx context.Context, companyID int64, q string, limit int) ([]domain.Deal, error) {
	return r.listScoped(ctx, companyID, func(query *gorm.DB) *gorm.DB {
		return searchCondition(query, likePattern(q), "deals.title").Limit(clampLimit(limit, 50))
	})
}

func (r *DealRepository) listScoped(ctx context.Context, companyID int64, filter func(*gorm.DB) *gorm.DB) ([]domain.Deal, error) {
	query, ok, err := r.scope.Owned(ctx, companyID, DealOwner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Deal{}, nil
	}
	if filter != nil {
		query = filter(query)
	}

	var deals []domain.Deal
	err = query.Preload("Owner").Order(dealDefaultOrder).Find(&deals).Error
	return deals, err
}

// ListByProfile returns deals owned by a single profile
func (r *DealRepository) ListByProfile(ctx context.Context, profileID int64) ([]domain.Deal, error) {
	var deals []domain.Deal
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order(dealDefaultOrder).
		Find(&deals).Error
	return deals, err
}

// ListOpenByProfiles returns non-closed deals owned by any of profileIDs
func (r *DealRepository) ListOpenByProfiles(ctx context.Context, profileIDs []int64) ([]domain.Deal, error) {
	if len(profileIDs) == 0 {
		return []domain.Deal{}, nil
	}
	var deals []domain.Deal
	err := DealOwner.Apply(r.db.WithContext(ctx), profileIDs).
		Where("deals.stage NOT IN ?", []domain.DealStage{domain.DealStageClosedWon, domain.DealStageClosedLost}).
		Preload("Owner").
		Order(dealDefaultOrder).
		Find(&deals).Error
	return deals, err
}

func (r *DealRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return affected(r.db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("deal_id = ?", id).
		Updates(fields))
}

func (r *DealRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.Deal{}, "deal_id = ?", id))
}
