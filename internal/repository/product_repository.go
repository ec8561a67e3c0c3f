package repository

import (
	"context"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db    *gorm.DB
	scope *ScopeResolver
}

func NewProductRepository(db *gorm.DB, scope *ScopeResolver) *ProductRepository {
	return &ProductRepository{db: db, scope: scope}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, "product_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByCompany returns products created by the tenant's profiles, newest first
func (r *ProductRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.Product, error) {
	query, ok, err := r.scope.Owned(ctx, companyID, ProductOwner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	err = query.Order("products.created_at DESC, products.product_id DESC").Find(&products).Error
	return products, err
}

func (r *ProductRepository) Search(ctx context.Context, companyID int64, q string, limit int) ([]domain.Product, error) {
	query, ok, err := r.scope.Owned(ctx, companyID, ProductOwner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	err = searchCondition(query, likePattern(q), "products.name", "products.description").
		Order("products.name").
		Limit(clampLimit(limit, 50)).
		Find(&products).Error
	return products, err
}

func (r *ProductRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return affected(r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("product_id = ?", id).
		Updates(fields))
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.Product{}, "product_id = ?", id))
}
