package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxLabelLength       = 500
	MaxOptionLength      = 200
	MaxOptions           = 100
	MaxTermsLength       = 20000
	MinPasswordLength    = 8
	MaxPasswordLength    = 72 // bcrypt ignores anything beyond 72 bytes
	MaxEmailLength       = 254
)

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrTitleTooLong   = fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	ErrLabelRequired  = errors.New("label is required")
	ErrLabelTooLong   = fmt.Errorf("label must be at most %d characters", MaxLabelLength)
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrPasswordLength = fmt.Errorf("password must be between %d and %d characters", MinPasswordLength, MaxPasswordLength)
)

// ValidateTitle checks a form title. Surrounding whitespace does not count.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// ValidateDescription checks an optional form description.
func ValidateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	return nil
}

// ValidateLabel checks a question label.
func ValidateLabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrLabelRequired
	}
	if utf8.RuneCountInString(label) > MaxLabelLength {
		return ErrLabelTooLong
	}
	return nil
}

// NormalizeOptions trims every option and rejects blank or duplicate entries.
// Order is preserved.
func NormalizeOptions(options []string) ([]string, error) {
	if len(options) > MaxOptions {
		return nil, fmt.Errorf("at most %d options are allowed", MaxOptions)
	}

	seen := make(map[string]struct{}, len(options))
	normalized := make([]string, 0, len(options))
	for i, option := range options {
		option = strings.TrimSpace(option)
		if option == "" {
			return nil, fmt.Errorf("option %d must not be empty", i+1)
		}
		if utf8.RuneCountInString(option) > MaxOptionLength {
			return nil, fmt.Errorf("option %d must be at most %d characters", i+1, MaxOptionLength)
		}
		if _, dup := seen[option]; dup {
			return nil, fmt.Errorf("duplicate option %q", option)
		}
		seen[option] = struct{}{}
		normalized = append(normalized, option)
	}

	return normalized, nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail accepts a bare RFC 5322 address (no display name).
func ValidateEmail(email string) error {
	if email == "" || len(email) > MaxEmailLength {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks password length limits.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return ErrPasswordLength
	}
	return nil
}

// ValidateTerms checks an account's terms text.
func ValidateTerms(terms *string) error {
	if terms != nil && utf8.RuneCountInString(*terms) > MaxTermsLength {
		return fmt.Errorf("terms must be at most %d characters", MaxTermsLength)
	}
	return nil
}
