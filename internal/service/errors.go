package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pulse-crm/crm-api/internal/auth"
	"github.com/pulse-crm/crm-api/internal/repository"
)

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found or lies outside the
	// caller's company
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when no profile is attached to the request
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the profile may not perform the action
	ErrForbidden = errors.New("forbidden")
)

// wrap annotates a repository error, translating missing rows into ErrNotFound.
// A nil err stays nil.
func wrap(err error, action string) error {
	if err == nil {
		return nil
	}
	if repository.IsNotFound(err) {
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// actor returns the profile acting on the request
func actor(ctx context.Context) (*auth.UserContext, error) {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	return user, nil
}
