package access

import (
	"context"

	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrFormNotFound = apperrors.NotFound("Form not found")

	// ErrInvalidGrantRole is returned when a grant or invite names a role
	// other than editor or viewer.
	ErrInvalidGrantRole = apperrors.BadRequest("role must be one of: editor, viewer")
)

// RoleStore is the read side the resolver needs.
type RoleStore interface {
	// GetFormOwner returns ErrFormNotFound when the form does not exist.
	GetFormOwner(ctx context.Context, formID uuid.UUID) (uuid.UUID, error)
	// GetGrantRole returns RoleNone when the user holds no grant.
	GetGrantRole(ctx context.Context, formID, userID uuid.UUID) (Role, error)
}

// Resolver computes effective roles. Nothing is cached; every call reads
// ownership and grants afresh.
type Resolver struct {
	store RoleStore
}

func NewResolver(store RoleStore) *Resolver {
	return &Resolver{store: store}
}

// ResolveRole returns the caller's effective role on the form. Ownership
// wins over any grant row. An anonymous caller (uuid.Nil) resolves to
// RoleNone once the form is known to exist.
func (r *Resolver) ResolveRole(ctx context.Context, formID, userID uuid.UUID) (Role, error) {
	ownerID, err := r.store.GetFormOwner(ctx, formID)
	if err != nil {
		return RoleNone, err
	}

	if userID == uuid.Nil {
		return RoleNone, nil
	}
	if ownerID == userID {
		return RoleOwner, nil
	}

	return r.store.GetGrantRole(ctx, formID, userID)
}

// Require resolves the caller's role and checks it against allowed. Missing
// forms fail with NotFound before any role check.
func (r *Resolver) Require(ctx context.Context, formID, userID uuid.UUID, allowed Predicate, required string) (Role, error) {
	role, err := r.ResolveRole(ctx, formID, userID)
	if err != nil {
		return RoleNone, err
	}

	if !allowed(role) {
		log.Debug().
			Str("user_id", userID.String()).
			Str("form_id", formID.String()).
			Str("user_role", role.String()).
			Str("required_role", required).
			Msg("RBAC: Insufficient permissions")
		return role, apperrors.Forbidden("Insufficient permissions: " + required + " role required")
	}

	return role, nil
}

func (r *Resolver) RequireViewer(ctx context.Context, formID, userID uuid.UUID) (Role, error) {
	return r.Require(ctx, formID, userID, CanViewResponses, "viewer")
}

func (r *Resolver) RequireEditor(ctx context.Context, formID, userID uuid.UUID) (Role, error) {
	return r.Require(ctx, formID, userID, CanEdit, "editor")
}

func (r *Resolver) RequireOwner(ctx context.Context, formID, userID uuid.UUID) (Role, error) {
	return r.Require(ctx, formID, userID, CanManageAccess, "owner")
}
