package access

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTokenCollision is returned by Store.CreateInvite when the token hash is
// already taken.
var ErrTokenCollision = errors.New("invite token hash collision")

// Store persists grants and invites.
type Store interface {
	RoleStore

	// UpsertGrant inserts or replaces the user's grant. Returns
	// ErrUserNotFound when the user does not exist.
	UpsertGrant(ctx context.Context, formID, userID uuid.UUID, role Role) (*Grant, error)
	// DeleteGrant reports whether a grant was removed.
	DeleteGrant(ctx context.Context, formID, userID uuid.UUID) (bool, error)
	ListGrants(ctx context.Context, formID uuid.UUID) ([]GrantWithEmail, error)

	CreateInvite(ctx context.Context, invite NewInvite) (*Invite, error)

	// InTx runs fn in a single transaction. fn's error rolls back.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the unit of work used to redeem an invite.
type Tx interface {
	// LockActiveInvite locks the unused, unexpired invite with the given
	// token hash. Returns ErrInviteNotFound when there is none.
	LockActiveInvite(ctx context.Context, tokenHash []byte, now time.Time) (*Invite, error)
	GetFormOwner(ctx context.Context, formID uuid.UUID) (uuid.UUID, error)
	GetGrantRoleForUpdate(ctx context.Context, formID, userID uuid.UUID) (Role, error)
	InsertGrant(ctx context.Context, formID, userID uuid.UUID, role Role) error
	UpdateGrantRole(ctx context.Context, formID, userID uuid.UUID, role Role) error
	MarkInviteUsed(ctx context.Context, inviteID, userID uuid.UUID, now time.Time) error
}
