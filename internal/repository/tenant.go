package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

// MaxPageSize caps list endpoints that accept a limit
const MaxPageSize = 200

// OwnerScope names the columns through which an entity references the profiles
// that own it. A row is in scope when any of the columns matches.
type OwnerScope struct {
	columns []string
}

// Foreign keys used to scope each entity to a tenant's profiles
var (
	ContactOwner     = OwnerScope{columns: []string{"contacts.created_by"}}
	DealOwner        = OwnerScope{columns: []string{"deals.profile_id"}}
	ProductOwner     = OwnerScope{columns: []string{"products.created_by"}}
	TaskOwner        = OwnerScope{columns: []string{"tasks.assigned_to", "tasks.created_by"}}
	InteractionOwner = OwnerScope{columns: []string{"interactions.created_by"}}
)

// Reference names a tenant-owned table that other records point at by id
type Reference struct {
	Name  string
	table string
	key   string
	owner OwnerScope
}

// Rows that deals, tasks and interactions may reference
var (
	ContactRef = Reference{Name: "contact", table: "contacts", key: "contacts.contact_id", owner: ContactOwner}
	ProductRef = Reference{Name: "product", table: "products", key: "products.product_id", owner: ProductOwner}
	DealRef    = Reference{Name: "deal", table: "deals", key: "deals.deal_id", owner: DealOwner}
)

// Apply restricts query to rows owned by any of profileIDs
func (s OwnerScope) Apply(query *gorm.DB, profileIDs []int64) *gorm.DB {
	conds := make([]string, len(s.columns))
	args := make([]interface{}, len(s.columns))
	for i, col := range s.columns {
		conds[i] = col + " IN ?"
		args[i] = profileIDs
	}
	return query.Where("("+strings.Join(conds, " OR ")+")", args...)
}

// ScopeResolver translates a tenant id into the profile ids used to filter
// tenant-owned records
type ScopeResolver struct {
	db *gorm.DB
}

func NewScopeResolver(db *gorm.DB) *ScopeResolver {
	return &ScopeResolver{db: db}
}

// ProfileIDs returns the ids of every profile in the company. An empty result is
// a valid empty tenant, not an error.
func (s *ScopeResolver) ProfileIDs(ctx context.Context, companyID int64) ([]int64, error) {
	ids := []int64{}
	err := s.db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("company_id = ?", companyID).
		Order("profile_id").
		Pluck("profile_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Owned returns a query over rows of the tenant owned through scope. ok is false
// when the tenant has no profiles; callers must then skip the entity query.
func (s *ScopeResolver) Owned(ctx context.Context, companyID int64, scope OwnerScope) (query *gorm.DB, ok bool, err error) {
	ids, err := s.ProfileIDs(ctx, companyID)
	if err != nil {
		return nil, false, err
	}
	if len(ids) == 0 {
		return nil, false, nil
	}
	return scope.Apply(s.db.WithContext(ctx), ids), true, nil
}

// ProfileInCompany reports whether profileID belongs to companyID
func (s *ScopeResolver) ProfileInCompany(ctx context.Context, companyID, profileID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("company_id = ? AND profile_id = ?", companyID, profileID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// References reports whether row id of ref exists and is owned by a profile of
// companyID. Missing rows and rows of other tenants both report false.
func (s *ScopeResolver) References(ctx context.Context, companyID int64, ref Reference, id int64) (bool, error) {
	query, ok, err := s.Owned(ctx, companyID, ref.owner)
	if err != nil || !ok {
		return false, err
	}
	var count int64
	err = query.Table(ref.table).Where(ref.key+" = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// likePattern builds a case-insensitive substring pattern, escaping LIKE wildcards
func likePattern(query string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(replacer.Replace(query)) + "%"
}

// searchCondition matches pattern against any of columns, case-insensitively
func searchCondition(query *gorm.DB, pattern string, columns ...string) *gorm.DB {
	conds := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		conds[i] = "LOWER(" + col + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return query.Where("("+strings.Join(conds, " OR ")+")", args...)
}

// clampLimit keeps a caller-supplied limit within (0, MaxPageSize]
func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// affected converts a zero-row write into gorm.ErrRecordNotFound
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports whether err is a missing-row error
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
