package responses

import (
	"context"
	"fmt"

	"github.com/aliuyar1234/formkit/internal/access"
	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/aliuyar1234/formkit/internal/forms"
	"github.com/aliuyar1234/formkit/internal/questions"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrFormNotPublished = apperrors.BadRequest("Form is not published")

// FormGetter loads a form without any access check.
type FormGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*forms.Form, error)
}

// QuestionLister loads the current questions of a form without any access check.
type QuestionLister interface {
	List(ctx context.Context, formID uuid.UUID) ([]questions.Question, error)
}

type Service struct {
	store     Store
	forms     FormGetter
	questions QuestionLister
	resolver  *access.Resolver
}

func NewService(store Store, forms FormGetter, questions QuestionLister, resolver *access.Resolver) *Service {
	return &Service{store: store, forms: forms, questions: questions, resolver: resolver}
}

// Submit records a public submission against a published form. Answers
// without a present value are dropped before persisting.
func (s *Service) Submit(ctx context.Context, formID uuid.UUID, submitted []SubmittedAnswer) (*Response, error) {
	form, err := s.forms.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !form.IsPublished {
		return nil, ErrFormNotPublished
	}

	qs, err := s.questions.List(ctx, formID)
	if err != nil {
		return nil, err
	}

	known := make(map[uuid.UUID]struct{}, len(qs))
	for _, q := range qs {
		known[q.ID] = struct{}{}
	}

	byQuestion := make(map[uuid.UUID]Value, len(submitted))
	for _, a := range submitted {
		if _, ok := known[a.QuestionID]; !ok {
			return nil, apperrors.BadRequest(fmt.Sprintf("Unknown question: %s", a.QuestionID))
		}
		if _, dup := byQuestion[a.QuestionID]; dup {
			return nil, apperrors.BadRequest(fmt.Sprintf("Duplicate answer for question: %s", a.QuestionID))
		}
		byQuestion[a.QuestionID] = a.Value
	}

	for _, q := range qs {
		if q.Required && !byQuestion[q.ID].Present() {
			return nil, apperrors.BadRequest(fmt.Sprintf("Question %q is required", q.Label))
		}
	}

	answers := make([]Answer, 0, len(submitted))
	for _, a := range submitted {
		if a.Value.Present() {
			answers = append(answers, Answer{QuestionID: a.QuestionID, Value: a.Value})
		}
	}

	resp, err := s.store.Create(ctx, formID, answers)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("form_id", formID.String()).
		Str("response_id", resp.ID.String()).
		Int("answers", len(answers)).
		Msg("Response submitted")

	return resp, nil
}

// List returns a page of responses, newest first. Requires viewer or higher.
func (s *Service) List(ctx context.Context, formID, callerID uuid.UUID, params ListParams) (*Page, error) {
	if _, err := s.resolver.RequireViewer(ctx, formID, callerID); err != nil {
		return nil, err
	}

	params = params.normalized()

	total, err := s.store.Count(ctx, formID, params.From)
	if err != nil {
		return nil, err
	}

	page := &Page{Items: []ResponseWithAnswers{}, Total: total, Page: params.Page, Limit: params.Limit}
	if params.offset() >= total {
		return page, nil
	}

	page.Items, err = s.store.ListPage(ctx, formID, params.From, params.Limit, params.offset())
	if err != nil {
		return nil, err
	}
	return page, nil
}
