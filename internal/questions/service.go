package questions

import (
	"context"
	"fmt"
	"strings"

	"github.com/aliuyar1234/formkit/internal/access"
	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/aliuyar1234/formkit/internal/forms"
	"github.com/aliuyar1234/formkit/internal/validation"
	"github.com/google/uuid"
)

// FormViewer resolves whether a caller may see a form at all.
type FormViewer interface {
	Visible(ctx context.Context, formID, callerID uuid.UUID) (*forms.Form, access.Role, error)
}

// RawInput is an unvalidated question definition as received from a client.
type RawInput struct {
	Type     string
	Label    string
	Required bool
	Order    *int
	Options  []string
}

type Service struct {
	store    Store
	forms    FormViewer
	resolver *access.Resolver
}

func NewService(store Store, forms FormViewer, resolver *access.Resolver) *Service {
	return &Service{store: store, forms: forms, resolver: resolver}
}

// List returns the form's questions in display order. Anyone may list the
// questions of a published form.
func (s *Service) List(ctx context.Context, formID, callerID uuid.UUID) ([]Question, error) {
	if _, _, err := s.forms.Visible(ctx, formID, callerID); err != nil {
		return nil, err
	}
	return s.store.List(ctx, formID)
}

func (s *Service) Create(ctx context.Context, formID, callerID uuid.UUID, raw RawInput) (*Question, error) {
	if _, err := s.resolver.RequireEditor(ctx, formID, callerID); err != nil {
		return nil, err
	}

	in, err := normalizeInput(raw)
	if err != nil {
		return nil, err
	}

	return s.store.Create(ctx, formID, in)
}

func (s *Service) Update(ctx context.Context, formID, questionID, callerID uuid.UUID, raw RawInput) (*Question, error) {
	if _, err := s.resolver.RequireEditor(ctx, formID, callerID); err != nil {
		return nil, err
	}

	in, err := normalizeInput(raw)
	if err != nil {
		return nil, err
	}

	return s.store.Update(ctx, formID, questionID, in)
}

// Delete removes the question. Answers already given to it are kept.
func (s *Service) Delete(ctx context.Context, formID, questionID, callerID uuid.UUID) error {
	if _, err := s.resolver.RequireEditor(ctx, formID, callerID); err != nil {
		return err
	}
	return s.store.Delete(ctx, formID, questionID)
}

// Reorder assigns each question the position of its id in ids. Concurrent
// reorders are last-writer-wins.
func (s *Service) Reorder(ctx context.Context, formID, callerID uuid.UUID, ids []uuid.UUID) ([]Question, error) {
	if _, err := s.resolver.RequireEditor(ctx, formID, callerID); err != nil {
		return nil, err
	}

	if err := s.store.Reorder(ctx, formID, ids); err != nil {
		return nil, err
	}
	return s.store.List(ctx, formID)
}

func normalizeInput(raw RawInput) (Input, error) {
	qType, err := ParseType(strings.TrimSpace(raw.Type))
	if err != nil {
		return Input{}, apperrors.BadRequest(err.Error())
	}

	if err := validation.ValidateLabel(raw.Label); err != nil {
		return Input{}, apperrors.BadRequest(err.Error())
	}

	if raw.Order != nil && *raw.Order < 0 {
		return Input{}, apperrors.BadRequest("order must not be negative")
	}

	var options []string
	if qType.HasOptions() {
		if len(raw.Options) == 0 {
			return Input{}, apperrors.BadRequest(fmt.Sprintf("options are required for %s questions", qType))
		}
		options, err = validation.NormalizeOptions(raw.Options)
		if err != nil {
			return Input{}, apperrors.BadRequest(err.Error())
		}
	} else if len(raw.Options) > 0 {
		return Input{}, apperrors.BadRequest(fmt.Sprintf("%s questions do not take options", qType))
	}

	return Input{
		Type:     qType,
		Label:    strings.TrimSpace(raw.Label),
		Required: raw.Required,
		Order:    raw.Order,
		Options:  options,
	}, nil
}
