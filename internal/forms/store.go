package forms

import (
	"context"
	"errors"
	"fmt"

	"github.com/aliuyar1234/formkit/internal/access"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists forms. Missing forms are reported as access.ErrFormNotFound.
type Store interface {
	Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Form, error)
	Get(ctx context.Context, id uuid.UUID) (*Form, error)
	ListOwnedOrShared(ctx context.Context, userID uuid.UUID) ([]FormWithRole, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Form, error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool) (*Form, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetTerms(ctx context.Context, id uuid.UUID) (*Terms, error)
}

// PostgresStore implements Store on top of a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const formColumns = `id, owner_id, title, description, is_published, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Form, error) {
	form, err := scanForm(s.pool.QueryRow(ctx, `
		INSERT INTO forms (owner_id, title, description, is_published)
		VALUES ($1, $2, $3, $4)
		RETURNING `+formColumns, ownerID, in.Title, in.Description, in.IsPublished))
	if err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}
	return form, nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Form, error) {
	return s.one(ctx, "failed to get form", `SELECT `+formColumns+` FROM forms WHERE id = $1`, id)
}

func (s *PostgresStore) ListOwnedOrShared(ctx context.Context, userID uuid.UUID) ([]FormWithRole, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+formColumns+`, 'owner' AS role
		FROM forms
		WHERE owner_id = $1
		UNION ALL
		SELECT f.id, f.owner_id, f.title, f.description, f.is_published, f.created_at, f.updated_at, fa.role
		FROM forms f
		INNER JOIN form_access fa ON fa.form_id = f.id
		WHERE fa.user_id = $1 AND f.owner_id <> $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	defer rows.Close()

	list := []FormWithRole{}
	for rows.Next() {
		var item FormWithRole
		var roleName string
		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.Title,
			&item.Description,
			&item.IsPublished,
			&item.CreatedAt,
			&item.UpdatedAt,
			&roleName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan form: %w", err)
		}
		if item.Role, err = access.ParseRole(roleName); err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating forms: %w", err)
	}

	return list, nil
}

func (s *PostgresStore) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Form, error) {
	return s.one(ctx, "failed to update form", `
		UPDATE forms
		SET title = COALESCE($2, title),
		    description = CASE WHEN $3::text IS NULL THEN description ELSE NULLIF(btrim($3::text), '') END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+formColumns, id, in.Title, in.Description)
}

func (s *PostgresStore) SetPublished(ctx context.Context, id uuid.UUID, published bool) (*Form, error) {
	return s.one(ctx, "failed to update form status", `
		UPDATE forms
		SET is_published = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+formColumns, id, published)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM forms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return access.ErrFormNotFound
	}
	return nil
}

func (s *PostgresStore) GetTerms(ctx context.Context, id uuid.UUID) (*Terms, error) {
	var terms Terms
	err := s.pool.QueryRow(ctx, `
		SELECT f.title, u.terms_text
		FROM forms f
		INNER JOIN users u ON u.id = f.owner_id
		WHERE f.id = $1
	`, id).Scan(&terms.FormTitle, &terms.TermsText)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, access.ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form terms: %w", err)
	}
	return &terms, nil
}

func (s *PostgresStore) one(ctx context.Context, failure, query string, args ...any) (*Form, error) {
	form, err := scanForm(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, access.ErrFormNotFound
		}
		return nil, fmt.Errorf("%s: %w", failure, err)
	}
	return form, nil
}

func scanForm(row pgx.Row) (*Form, error) {
	var form Form
	if err := row.Scan(
		&form.ID,
		&form.OwnerID,
		&form.Title,
		&form.Description,
		&form.IsPublished,
		&form.CreatedAt,
		&form.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &form, nil
}
