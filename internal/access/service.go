package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MinInviteHours = 1
	MaxInviteHours = 24 * 365

	inviteCreateAttempts = 3
)

var (
	ErrUserNotFound   = apperrors.NotFound("User not found")
	ErrUserIDRequired = apperrors.BadRequest("user_id is required")
	ErrGrantNotFound  = apperrors.NotFound("Access grant not found")
	ErrInviteNotFound = apperrors.NotFound("Invite not found")
	ErrOwnerGrant     = apperrors.BadRequest("The form owner cannot be granted a role")
	ErrInviteExpiry   = apperrors.BadRequest(fmt.Sprintf("expires_in_hours must be between %d and %d", MinInviteHours, MaxInviteHours))
)

// Service manages grants and the invite protocol. Every operation except
// AcceptInvite is reserved for the form owner.
type Service struct {
	store    Store
	resolver *Resolver
	baseURL  string
	now      func() time.Time
}

func NewService(store Store, resolver *Resolver, baseURL string) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		baseURL:  baseURL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AddAccess grants targetUserID the given role, replacing any existing grant.
// Ownership is checked before the input is looked at.
func (s *Service) AddAccess(ctx context.Context, formID, callerID, targetUserID uuid.UUID, role Role) (*Grant, error) {
	if _, err := s.resolver.RequireOwner(ctx, formID, callerID); err != nil {
		return nil, err
	}

	if targetUserID == uuid.Nil {
		return nil, ErrUserIDRequired
	}
	if !role.IsGrantable() {
		return nil, ErrInvalidGrantRole
	}
	if targetUserID == callerID {
		return nil, ErrOwnerGrant
	}

	return s.store.UpsertGrant(ctx, formID, targetUserID, role)
}

func (s *Service) RemoveAccess(ctx context.Context, formID, callerID, targetUserID uuid.UUID) error {
	if _, err := s.resolver.RequireOwner(ctx, formID, callerID); err != nil {
		return err
	}

	removed, err := s.store.DeleteGrant(ctx, formID, targetUserID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrGrantNotFound
	}
	return nil
}

func (s *Service) ListAccess(ctx context.Context, formID, callerID uuid.UUID) ([]GrantWithEmail, error) {
	if _, err := s.resolver.RequireOwner(ctx, formID, callerID); err != nil {
		return nil, err
	}
	return s.store.ListGrants(ctx, formID)
}

// CreateInvite issues a new single-use invite. The plaintext token is only
// available in the returned value.
func (s *Service) CreateInvite(ctx context.Context, formID, callerID uuid.UUID, role Role, expiresInHours *int) (*CreatedInvite, error) {
	if _, err := s.resolver.RequireOwner(ctx, formID, callerID); err != nil {
		return nil, err
	}

	if !role.IsGrantable() {
		return nil, ErrInvalidGrantRole
	}
	if expiresInHours != nil && (*expiresInHours < MinInviteHours || *expiresInHours > MaxInviteHours) {
		return nil, ErrInviteExpiry
	}

	var expiresAt *time.Time
	if expiresInHours != nil {
		t := s.now().Add(time.Duration(*expiresInHours) * time.Hour)
		expiresAt = &t
	}

	for attempt := 0; attempt < inviteCreateAttempts; attempt++ {
		token, tokenHash, err := GenerateInviteToken()
		if err != nil {
			return nil, err
		}

		invite, err := s.store.CreateInvite(ctx, NewInvite{
			FormID:          formID,
			Role:            role,
			TokenHash:       tokenHash,
			CreatedByUserID: callerID,
			ExpiresAt:       expiresAt,
		})
		if errors.Is(err, ErrTokenCollision) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return &CreatedInvite{
			Invite: *invite,
			Token:  token,
			Link:   s.inviteLink(token),
		}, nil
	}

	return nil, fmt.Errorf("failed to create invite: token collision retry exhausted")
}

// AcceptInvite redeems token for userID. Unknown, used and expired tokens
// all fail with ErrInviteNotFound. The grant write and the consumption of
// the token commit together.
func (s *Service) AcceptInvite(ctx context.Context, token string, userID uuid.UUID) (*AcceptResult, error) {
	if !ValidInviteTokenFormat(token) {
		return nil, ErrInviteNotFound
	}
	tokenHash := HashInviteToken(token)
	now := s.now()

	var result AcceptResult
	err := s.store.InTx(ctx, func(tx Tx) error {
		invite, err := tx.LockActiveInvite(ctx, tokenHash, now)
		if err != nil {
			return err
		}

		ownerID, err := tx.GetFormOwner(ctx, invite.FormID)
		if err != nil {
			return err
		}

		result = AcceptResult{FormID: invite.FormID, Role: invite.Role}

		switch {
		case ownerID == userID:
			result.Role = RoleOwner
			result.AlreadyHadAccess = true
		default:
			current, err := tx.GetGrantRoleForUpdate(ctx, invite.FormID, userID)
			if err != nil {
				return err
			}

			switch {
			case current.AtLeast(invite.Role):
				result.Role = current
				result.AlreadyHadAccess = true
			case current == RoleNone:
				if err := tx.InsertGrant(ctx, invite.FormID, userID, invite.Role); err != nil {
					return err
				}
			default:
				if err := tx.UpdateGrantRole(ctx, invite.FormID, userID, invite.Role); err != nil {
					return err
				}
			}
		}

		return tx.MarkInviteUsed(ctx, invite.ID, userID, now)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("form_id", result.FormID.String()).
		Str("user_id", userID.String()).
		Str("role", result.Role.String()).
		Bool("already_had_access", result.AlreadyHadAccess).
		Msg("Invite accepted")

	return &result, nil
}

func (s *Service) inviteLink(token string) string {
	return s.baseURL + "/join?token=" + token
}
