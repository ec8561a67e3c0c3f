package repository

import (
	"context"
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

// ProfileRepository handles CRM users. Profiles carry company_id directly, so
// no scope resolution is needed.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.db.WithContext(ctx).First(&profile, "profile_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByUserID resolves the profile of an identity provider subject
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListByCompany returns the company's profiles, newest first
func (r *ProfileRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.Profile, error) {
	var profiles []domain.Profile
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC, profile_id DESC").
		Find(&profiles).Error
	return profiles, err
}

// ListByIDs returns profiles keyed by id
func (r *ProfileRepository) ListByIDs(ctx context.Context, ids []int64) (map[int64]domain.Profile, error) {
	out := make(map[int64]domain.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var profiles []domain.Profile
	if err := r.db.WithContext(ctx).Where("profile_id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProfileRepository) Search(ctx context.Context, companyID int64, q string, limit int) ([]domain.Profile, error) {
	var profiles []domain.Profile
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	err := searchCondition(query, likePattern(q), "fullname", "email").
		Order("fullname").
		Limit(clampLimit(limit, 50)).
		Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return affected(r.db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("profile_id = ?", id).
		Updates(fields))
}

// UpdateRole sets a profile's role and stamps updated_at
func (r *ProfileRepository) UpdateRole(ctx context.Context, id int64, role domain.ProfileRole, at time.Time) error {
	return r.Update(ctx, id, map[string]interface{}{"role": role, "updated_at": at})
}

func (r *ProfileRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.Profile{}, "profile_id = ?", id))
}
