package responses

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Response is one submission of a form.
type Response struct {
	ID        uuid.UUID `json:"id"`
	FormID    uuid.UUID `json:"form_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Answer is a stored answer. QuestionID may refer to a question that has
// since been deleted.
type Answer struct {
	QuestionID uuid.UUID `json:"question_id"`
	Value      Value     `json:"value"`
}

// SubmittedAnswer is one entry of an incoming submission.
type SubmittedAnswer struct {
	QuestionID uuid.UUID `json:"question_id"`
	Value      Value     `json:"value"`
}

type ResponseWithAnswers struct {
	Response
	Answers []Answer `json:"answers"`
}

const (
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit inside int range.
	MaxPage = math.MaxInt / MaxLimit
)

// ListParams selects a page of responses. Page and Limit are clamped into
// range; a caller with no limit from the client passes DefaultLimit.
type ListParams struct {
	Page  int
	Limit int
	// From is an inclusive lower bound on created_at.
	From *time.Time
}

func (p ListParams) normalized() ListParams {
	switch {
	case p.Page < 1:
		p.Page = 1
	case p.Page > MaxPage:
		p.Page = MaxPage
	}
	switch {
	case p.Limit < 1:
		p.Limit = 1
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	return p
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one page of a response listing.
type Page struct {
	Items []ResponseWithAnswers `json:"items"`
	Total int                   `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
