package repository

import (
	"context"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type ContactRepository struct {
	db    *gorm.DB
	scope *ScopeResolver
}

func NewContactRepository(db *gorm.DB, scope *ScopeResolver) *ContactRepository {
	return &ContactRepository{db: db, scope: scope}
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// CreateBatch inserts contacts in a single transaction
func (r *ContactRepository) CreateBatch(ctx context.Context, contacts []domain.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&contacts, 100).Error
	})
}

func (r *ContactRepository) GetByID(ctx context.Context, id int64) (*domain.Contact, error) {
	var contact domain.Contact
	if err := r.db.WithContext(ctx).First(&contact, "contact_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// ListByCompany returns the tenant's contacts, newest first. Tenant ownership is
// derived from the creator's profile, never from contacts.company_id.
func (r *ContactRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.Contact, error) {
	query, ok, err := r.scope.Owned(ctx, companyID, ContactOwner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Contact{}, nil
	}

	var contacts []domain.Contact
	err = query.Order("contacts.created_at DESC, contacts.contact_id DESC").Find(&contacts).Error
	return contacts, err
}

// Search matches fullname or email case-insensitively within the tenant
func (r *ContactRepository) Search(ctx context.Context, companyID int64, q string, limit int) ([]domain.Contact, error) {
	query, ok, err := r.scope.Owned(ctx, companyID, ContactOwner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Contact{}, nil
	}

	var contacts []domain.Contact
	err = searchCondition(query, likePattern(q), "contacts.fullname", "contacts.email").
		Order("contacts.fullname").
		Limit(clampLimit(limit, 50)).
		Find(&contacts).Error
	return contacts, err
}

// Update writes only the given columns
func (r *ContactRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return affected(r.db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("contact_id = ?", id).
		Updates(fields))
}

func (r *ContactRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.Contact{}, "contact_id = ?", id))
}
