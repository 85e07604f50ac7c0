package forms

import (
	"context"
	"strings"

	"github.com/aliuyar1234/formkit/internal/access"
	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/aliuyar1234/formkit/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrStatusRequired = apperrors.BadRequest("is_published is required")

// Service implements form management on top of Store. Role checks go
// through the access resolver on every call.
type Service struct {
	store    Store
	resolver *access.Resolver
}

func NewService(store Store, resolver *access.Resolver) *Service {
	return &Service{store: store, resolver: resolver}
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Form, error) {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, apperrors.BadRequest(err.Error())
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, apperrors.BadRequest(err.Error())
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = normalizeDescription(in.Description)

	form, err := s.store.Create(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("form_id", form.ID.String()).
		Str("owner_id", ownerID.String()).
		Msg("Form created")

	return form, nil
}

// ListForUser returns the forms the user owns or has been granted, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]FormWithRole, error) {
	return s.store.ListOwnedOrShared(ctx, userID)
}

// Visible loads a form for a possibly anonymous caller. Drafts are only
// visible to callers with a role; to everyone else they do not exist.
func (s *Service) Visible(ctx context.Context, formID, callerID uuid.UUID) (*Form, access.Role, error) {
	form, err := s.store.Get(ctx, formID)
	if err != nil {
		return nil, access.RoleNone, err
	}

	role, err := s.resolver.ResolveRole(ctx, formID, callerID)
	if err != nil {
		return nil, access.RoleNone, err
	}

	if !form.IsPublished && role == access.RoleNone {
		return nil, access.RoleNone, access.ErrFormNotFound
	}
	return form, role, nil
}

func (s *Service) GetPublic(ctx context.Context, formID, callerID uuid.UUID) (*Form, error) {
	form, _, err := s.Visible(ctx, formID, callerID)
	return form, err
}

// GetWithRole requires at least viewer access.
func (s *Service) GetWithRole(ctx context.Context, formID, callerID uuid.UUID) (*FormWithRole, error) {
	role, err := s.resolver.RequireViewer(ctx, formID, callerID)
	if err != nil {
		return nil, err
	}

	form, err := s.store.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	return &FormWithRole{Form: *form, Role: role}, nil
}

func (s *Service) Update(ctx context.Context, formID, callerID uuid.UUID, in UpdateInput) (*Form, error) {
	if _, err := s.resolver.RequireEditor(ctx, formID, callerID); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if err := validation.ValidateTitle(*in.Title); err != nil {
			return nil, apperrors.BadRequest(err.Error())
		}
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, apperrors.BadRequest(err.Error())
	}

	return s.store.Update(ctx, formID, in)
}

// SetPublished sets the publish flag. A nil flag is rejected once the caller
// is known to be an editor.
func (s *Service) SetPublished(ctx context.Context, formID, callerID uuid.UUID, published *bool) (*Form, error) {
	if _, err := s.resolver.RequireEditor(ctx, formID, callerID); err != nil {
		return nil, err
	}
	if published == nil {
		return nil, ErrStatusRequired
	}

	form, err := s.store.SetPublished(ctx, formID, *published)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("form_id", formID.String()).
		Str("user_id", callerID.String()).
		Bool("is_published", *published).
		Msg("Form status changed")

	return form, nil
}

// Delete removes the form with its questions, grants, invites and responses.
func (s *Service) Delete(ctx context.Context, formID, callerID uuid.UUID) error {
	if _, err := s.resolver.RequireOwner(ctx, formID, callerID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, formID); err != nil {
		return err
	}

	log.Info().
		Str("form_id", formID.String()).
		Str("user_id", callerID.String()).
		Msg("Form deleted")

	return nil
}

// Terms returns the owner's terms for a visible form.
func (s *Service) Terms(ctx context.Context, formID, callerID uuid.UUID) (*Terms, error) {
	if _, _, err := s.Visible(ctx, formID, callerID); err != nil {
		return nil, err
	}
	return s.store.GetTerms(ctx, formID)
}

func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
