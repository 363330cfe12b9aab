// Package access decides what an authenticated identity may touch. Tokens
// carry only an id, so the admin role is resolved against the admin store.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-auth-onboarding/internal/domain"
)

type adminLookup interface {
	Get(ctx context.Context, adminID string) (*domain.Admin, error)
}

type Resolver struct {
	admins adminLookup
}

func NewResolver(admins adminLookup) *Resolver {
	return &Resolver{admins: admins}
}

// IsAdmin reports whether identityID belongs to an administrator.
func (r *Resolver) IsAdmin(ctx context.Context, identityID string) (bool, error) {
	if identityID == "" {
		return false, nil
	}
	_, err := r.admins.Get(ctx, identityID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("resolve admin: %w", err)
}

// AuthorizeOwner allows the customer who owns a resource and any admin.
func (r *Resolver) AuthorizeOwner(ctx context.Context, identityID, customerID string) error {
	if identityID != "" && identityID == customerID {
		return nil
	}
	admin, err := r.IsAdmin(ctx, identityID)
	if err != nil {
		return err
	}
	if !admin {
		return fmt.Errorf("identity %s may not access customer %s: %w", identityID, customerID, domain.ErrForbidden)
	}
	return nil
}
