package access

import (
	"time"

	"github.com/google/uuid"
)

// Grant is an explicit (form, user, role) record. The form owner never has one.
type Grant struct {
	ID        uuid.UUID `json:"id"`
	FormID    uuid.UUID `json:"form_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// GrantWithEmail is a grant joined with the grantee's account email.
type GrantWithEmail struct {
	Grant
	Email string `json:"email"`
}

// Invite is a single-use credential for joining a form with a role. Only the
// sha256 of its token is persisted.
type Invite struct {
	ID              uuid.UUID  `json:"id"`
	FormID          uuid.UUID  `json:"form_id"`
	Role            Role       `json:"role"`
	CreatedByUserID *uuid.UUID `json:"created_by_user_id"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       *time.Time `json:"expires_at"`
	UsedAt          *time.Time `json:"used_at"`
	UsedByUserID    *uuid.UUID `json:"used_by_user_id"`
}

// NewInvite carries the fields needed to persist an invite.
type NewInvite struct {
	FormID          uuid.UUID
	Role            Role
	TokenHash       []byte
	CreatedByUserID uuid.UUID
	ExpiresAt       *time.Time
}

// CreatedInvite is returned once at creation; the plaintext token is not
// retrievable afterwards.
type CreatedInvite struct {
	Invite
	Token string `json:"token"`
	Link  string `json:"link"`
}

// AcceptResult describes the outcome of a successful redemption.
type AcceptResult struct {
	FormID           uuid.UUID `json:"form_id"`
	Role             Role      `json:"role"`
	AlreadyHadAccess bool      `json:"already_had_access"`
}
