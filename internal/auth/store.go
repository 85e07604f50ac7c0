package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/aliuyar1234/formkit/internal/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound = apperrors.NotFound("User not found")
	ErrEmailTaken   = apperrors.Conflict("Email address already registered")
)

// Store persists accounts.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)
	// GetByEmail returns the user and its password hash.
	GetByEmail(ctx context.Context, email string) (*User, string, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateTerms(ctx context.Context, id uuid.UUID, terms *string) (*User, error)
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
}

// PostgresStore implements Store on top of a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const userColumns = `id, email, terms_text, created_at, updated_at`

func (s *PostgresStore) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING `+userColumns, email, passwordHash))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*User, string, error) {
	var user User
	var passwordHash string
	err := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`, password_hash
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.TermsText, &user.CreatedAt, &user.UpdatedAt, &passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("failed to query user: %w", err)
	}
	return &user, passwordHash, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) UpdateTerms(ctx context.Context, id uuid.UUID, terms *string) (*User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `
		UPDATE users
		SET terms_text = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, terms))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update terms: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE email = $1
	`, email, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.TermsText, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}
