package auth

import (
	"context"

	"github.com/pulse-crm/crm-api/internal/domain"
)

// UserContext is the authenticated CRM profile acting on a request
type UserContext struct {
	// Subject is the identity provider's user id (JWT "sub")
	Subject   string
	ProfileID int64
	CompanyID int64
	Role      domain.ProfileRole
	Fullname  string
	Email     string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// IsAdmin reports whether the profile administers its company
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.ProfileRoleAdmin
}

// CanAccessCompany checks if the profile belongs to the given tenant
func (u *UserContext) CanAccessCompany(companyID int64) bool {
	return u.CompanyID == companyID
}

// FromProfile builds the request identity for a resolved profile
func FromProfile(subject string, p *domain.Profile) *UserContext {
	return &UserContext{
		Subject:   subject,
		ProfileID: p.ID,
		CompanyID: p.CompanyID,
		Role:      p.Role,
		Fullname:  p.Fullname,
		Email:     p.Email,
	}
}

type identitySinkKey struct{}

// WithIdentitySink lets middleware that runs before Authenticate learn who
// the request was resolved to once the handler chain returns.
func WithIdentitySink(ctx context.Context, dst **UserContext) context.Context {
	return context.WithValue(ctx, identitySinkKey{}, dst)
}

func reportIdentity(ctx context.Context, user *UserContext) {
	if dst, ok := ctx.Value(identitySinkKey{}).(**UserContext); ok && dst != nil {
		*dst = user
	}
}
