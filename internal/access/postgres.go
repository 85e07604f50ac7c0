package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aliuyar1234/formkit/internal/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store on top of a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetFormOwner(ctx context.Context, formID uuid.UUID) (uuid.UUID, error) {
	return getFormOwner(ctx, s.pool, formID)
}

func (s *PostgresStore) GetGrantRole(ctx context.Context, formID, userID uuid.UUID) (Role, error) {
	return getGrantRole(ctx, s.pool, formID, userID, "")
}

func (s *PostgresStore) UpsertGrant(ctx context.Context, formID, userID uuid.UUID, role Role) (*Grant, error) {
	var grant Grant
	var roleName string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO form_access (form_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (form_id, user_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING id, form_id, user_id, role, created_at
	`, formID, userID, role.String()).Scan(
		&grant.ID,
		&grant.FormID,
		&grant.UserID,
		&roleName,
		&grant.CreatedAt,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to upsert access grant: %w", err)
	}

	if grant.Role, err = ParseRole(roleName); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (s *PostgresStore) DeleteGrant(ctx context.Context, formID, userID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM form_access
		WHERE form_id = $1 AND user_id = $2
	`, formID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete access grant: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ListGrants(ctx context.Context, formID uuid.UUID) ([]GrantWithEmail, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT fa.id, fa.form_id, fa.user_id, fa.role, fa.created_at, u.email
		FROM form_access fa
		INNER JOIN users u ON u.id = fa.user_id
		WHERE fa.form_id = $1
		ORDER BY fa.created_at DESC, fa.id DESC
	`, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list access grants: %w", err)
	}
	defer rows.Close()

	grants := []GrantWithEmail{}
	for rows.Next() {
		var g GrantWithEmail
		var roleName string
		if err := rows.Scan(&g.ID, &g.FormID, &g.UserID, &roleName, &g.CreatedAt, &g.Email); err != nil {
			return nil, fmt.Errorf("failed to scan access grant: %w", err)
		}
		if g.Role, err = ParseRole(roleName); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access grants: %w", err)
	}

	return grants, nil
}

func (s *PostgresStore) CreateInvite(ctx context.Context, invite NewInvite) (*Invite, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO form_invites (form_id, token_hash, role, created_by_user_id, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, form_id, role, created_by_user_id, created_at, expires_at, used_at, used_by_user_id
	`, invite.FormID, invite.TokenHash, invite.Role.String(), invite.CreatedByUserID, invite.ExpiresAt)

	created, err := scanInvite(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrTokenCollision
		}
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&postgresTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) LockActiveInvite(ctx context.Context, tokenHash []byte, now time.Time) (*Invite, error) {
	// A concurrent redeemer blocks here and re-checks used_at after the
	// first commit, so it finds no row.
	row := t.tx.QueryRow(ctx, `
		SELECT id, form_id, role, created_by_user_id, created_at, expires_at, used_at, used_by_user_id
		FROM form_invites
		WHERE token_hash = $1
		  AND used_at IS NULL
		  AND (expires_at IS NULL OR expires_at > $2)
		FOR UPDATE
	`, tokenHash, now)

	invite, err := scanInvite(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to load invite: %w", err)
	}
	return invite, nil
}

func (t *postgresTx) GetFormOwner(ctx context.Context, formID uuid.UUID) (uuid.UUID, error) {
	return getFormOwner(ctx, t.tx, formID)
}

func (t *postgresTx) GetGrantRoleForUpdate(ctx context.Context, formID, userID uuid.UUID) (Role, error) {
	return getGrantRole(ctx, t.tx, formID, userID, "FOR UPDATE")
}

func (t *postgresTx) InsertGrant(ctx context.Context, formID, userID uuid.UUID, role Role) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO form_access (form_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (form_id, user_id) DO NOTHING
	`, formID, userID, role.String())
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create access grant: %w", err)
	}
	return nil
}

func (t *postgresTx) UpdateGrantRole(ctx context.Context, formID, userID uuid.UUID, role Role) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE form_access
		SET role = $3
		WHERE form_id = $1 AND user_id = $2
	`, formID, userID, role.String())
	if err != nil {
		return fmt.Errorf("failed to update access grant: %w", err)
	}
	return nil
}

func (t *postgresTx) MarkInviteUsed(ctx context.Context, inviteID, userID uuid.UUID, now time.Time) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE form_invites
		SET used_at = $3, used_by_user_id = $2
		WHERE id = $1 AND used_at IS NULL
	`, inviteID, userID, now)
	if err != nil {
		return fmt.Errorf("failed to mark invite used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInviteNotFound
	}
	return nil
}

func getFormOwner(ctx context.Context, q querier, formID uuid.UUID) (uuid.UUID, error) {
	var ownerID uuid.UUID
	err := q.QueryRow(ctx, `SELECT owner_id FROM forms WHERE id = $1`, formID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrFormNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to load form owner: %w", err)
	}
	return ownerID, nil
}

func getGrantRole(ctx context.Context, q querier, formID, userID uuid.UUID, lock string) (Role, error) {
	var roleName string
	err := q.QueryRow(ctx, `
		SELECT role
		FROM form_access
		WHERE form_id = $1 AND user_id = $2
	`+lock, formID, userID).Scan(&roleName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RoleNone, nil
		}
		return RoleNone, fmt.Errorf("failed to load access grant: %w", err)
	}
	return ParseRole(roleName)
}

func scanInvite(row pgx.Row) (*Invite, error) {
	var invite Invite
	var roleName string
	if err := row.Scan(
		&invite.ID,
		&invite.FormID,
		&roleName,
		&invite.CreatedByUserID,
		&invite.CreatedAt,
		&invite.ExpiresAt,
		&invite.UsedAt,
		&invite.UsedByUserID,
	); err != nil {
		return nil, err
	}

	role, err := ParseRole(roleName)
	if err != nil {
		return nil, err
	}
	invite.Role = role
	return &invite, nil
}
