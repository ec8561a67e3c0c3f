package service

import (
	"context"
	"fmt"

	"github.com/pulse-crm/crm-api/internal/repository"
)

// ownedByCompany returns ErrNotFound unless at least one of profileIDs belongs to
// companyID. Records of other tenants are reported as missing, never forbidden.
func ownedByCompany(ctx context.Context, scope *repository.ScopeResolver, companyID int64, profileIDs ...int64) error {
	for _, id := range profileIDs {
		ok, err := scope.ProfileInCompany(ctx, companyID, id)
		if err != nil {
			return fmt.Errorf("failed to resolve tenant: %w", err)
		}
		if ok {
			return nil
		}
	}
	return ErrNotFound
}

// referencesInCompany returns ErrInvalidInput unless id is nil or names a row of
// ref owned by companyID
func referencesInCompany(ctx context.Context, scope *repository.ScopeResolver, companyID int64, ref repository.Reference, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := scope.References(ctx, companyID, ref, *id)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", ref.Name, err)
	}
	if !ok {
		return fmt.Errorf("%s %d: %w", ref.Name, *id, ErrInvalidInput)
	}
	return nil
}
