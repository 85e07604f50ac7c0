package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is an account. TermsText is shown on the terms preview of every form
// the user owns.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	TermsText *string   `json:"terms_text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
