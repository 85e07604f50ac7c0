package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/aliuyar1234/formkit/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrInvalidCredentials = apperrors.Unauthenticated("Invalid credentials")

// Session is returned by Register and Login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// Service implements account registration, login and profile updates.
type Service struct {
	store        Store
	secret       string
	sessionHours int
	now          func() time.Time
}

func NewService(store Store, secret string, sessionHours int) *Service {
	return &Service{
		store:        store,
		secret:       secret,
		sessionHours: sessionHours,
		now:          time.Now,
	}
}

func (s *Service) Register(ctx context.Context, email, password string) (*Session, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperrors.BadRequest("Invalid email address")
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, apperrors.BadRequest(err.Error())
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, email, passwordHash)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Msg("User registered")

	return s.issue(user)
}

// Login never reveals whether the email exists.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, passwordHash, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Debug().Msg("Login failed: user not found")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := VerifyPassword(passwordHash, password); err != nil {
		log.Debug().Str("user_id", user.ID.String()).Msg("Login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.store.GetByID(ctx, userID)
}

// UpdateTerms replaces the caller's terms text. A nil or blank value clears it.
func (s *Service) UpdateTerms(ctx context.Context, userID uuid.UUID, terms *string) (*User, error) {
	if err := validation.ValidateTerms(terms); err != nil {
		return nil, apperrors.BadRequest(err.Error())
	}
	if terms != nil && strings.TrimSpace(*terms) == "" {
		terms = nil
	}
	return s.store.UpdateTerms(ctx, userID, terms)
}

// ResetPassword sets a new password for the account with the given email.
func (s *Service) ResetPassword(ctx context.Context, email, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return apperrors.BadRequest(err.Error())
	}
	passwordHash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.store.UpdatePasswordHash(ctx, validation.NormalizeEmail(email), passwordHash)
}

func (s *Service) issue(user *User) (*Session, error) {
	now := s.now()
	token, err := CreateToken(user.ID, user.Email, s.secret, s.sessionHours, now)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.sessionHours) * time.Hour).UTC(),
		User:      user,
	}, nil
}
