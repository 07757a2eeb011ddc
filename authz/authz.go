// Package authz holds the authorization decisions shared by the HTTP guards.
// Every function is pure apart from the ownership lookup it is handed.
package authz

import (
	"context"
	"errors"

	"promo-restaurant-api/apperr"
	"promo-restaurant-api/models"
	"promo-restaurant-api/security"
	"promo-restaurant-api/store"
)

const (
	msgUnauthenticated = "No autenticado"
	msgForbidden       = "Acceso no autorizado"
)

// OwnerLookup resolves a resource id to the id of the user that owns it.
// It returns store.ErrNotFound when the resource does not exist.
type OwnerLookup func(ctx context.Context, resourceID uint) (uint, error)

// RequireRole passes iff p is present and its role is one of roles.
func RequireRole(p *security.Principal, roles ...models.UserRole) error {
	if p == nil {
		return apperr.Unauthorized(msgUnauthenticated)
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return apperr.Forbidden(msgForbidden)
}

// RequireOwnerOrAdmin passes for admins, and for restaurant owners whose id
// matches ownerUserID.
func RequireOwnerOrAdmin(p *security.Principal, ownerUserID uint) error {
	if p == nil {
		return apperr.Unauthorized(msgUnauthenticated)
	}
	if p.Role == models.RoleAdmin {
		return nil
	}
	if p.Role != models.RoleRestaurant || p.UserID != ownerUserID {
		return apperr.Forbidden(msgForbidden)
	}
	return nil
}

// Authorize runs the full ownership check against a resource. Admins never
// trigger the lookup; non-owners are refused before it.
func Authorize(ctx context.Context, p *security.Principal, resourceID uint, notFoundMsg string, lookup OwnerLookup) error {
	if p == nil {
		return apperr.Unauthorized(msgUnauthenticated)
	}
	if p.Role == models.RoleAdmin {
		return nil
	}
	if p.Role != models.RoleRestaurant {
		return apperr.Forbidden(msgForbidden)
	}

	ownerID, err := lookup(ctx, resourceID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	if err != nil {
		return apperr.Internal("Error de autorización", err)
	}
	return RequireOwnerOrAdmin(p, ownerID)
}
