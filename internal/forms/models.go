package forms

import (
	"time"

	"github.com/aliuyar1234/formkit/internal/access"
	"github.com/google/uuid"
)

// Form is a questionnaire owned by one user. Drafts (IsPublished false)
// accept no responses.
type Form struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FormWithRole pairs a form with the caller's effective role on it.
type FormWithRole struct {
	Form
	Role access.Role `json:"role"`
}

// Terms is the public terms preview of a form.
type Terms struct {
	FormTitle string  `json:"form_title"`
	TermsText *string `json:"terms_text"`
}

type CreateInput struct {
	Title       string
	Description *string
	IsPublished bool
}

// UpdateInput fields left nil are unchanged. An empty description clears it.
type UpdateInput struct {
	Title       *string
	Description *string
}
