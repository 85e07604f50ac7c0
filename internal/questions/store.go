package questions

import (
	"context"
	"errors"
	"fmt"

	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrQuestionNotFound = apperrors.NotFound("Question not found")
	ErrReorderMismatch  = apperrors.BadRequest("question_ids must list every question of the form exactly once")
)

// Store persists questions. Every lookup is scoped to a form, so a question
// of another form is reported as ErrQuestionNotFound.
type Store interface {
	List(ctx context.Context, formID uuid.UUID) ([]Question, error)
	Create(ctx context.Context, formID uuid.UUID, in Input) (*Question, error)
	Update(ctx context.Context, formID, questionID uuid.UUID, in Input) (*Question, error)
	Delete(ctx context.Context, formID, questionID uuid.UUID) error
	// Reorder sets each question's order to its index in ids. ids must be
	// exactly the form's question ids.
	Reorder(ctx context.Context, formID uuid.UUID, ids []uuid.UUID) error
}

// PostgresStore implements Store on top of a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const questionColumns = `id, form_id, type, label, required, "order", options, created_at, updated_at`

func (s *PostgresStore) List(ctx context.Context, formID uuid.UUID) ([]Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+questionColumns+`
		FROM questions
		WHERE form_id = $1
		ORDER BY "order", created_at, id
	`, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	list := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		list = append(list, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return list, nil
}

func (s *PostgresStore) Create(ctx context.Context, formID uuid.UUID, in Input) (*Question, error) {
	q, err := scanQuestion(s.pool.QueryRow(ctx, `
		INSERT INTO questions (form_id, type, label, required, "order", options)
		VALUES (
		  $1, $2, $3, $4,
		  COALESCE($5, (SELECT COALESCE(MAX("order"), -1) + 1 FROM questions WHERE form_id = $1)),
		  $6
		)
		RETURNING `+questionColumns,
		formID, string(in.Type), in.Label, in.Required, in.Order, optionsParam(in.Options)))
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return q, nil
}

func (s *PostgresStore) Update(ctx context.Context, formID, questionID uuid.UUID, in Input) (*Question, error) {
	q, err := scanQuestion(s.pool.QueryRow(ctx, `
		UPDATE questions
		SET type = $3,
		    label = $4,
		    required = $5,
		    "order" = COALESCE($6, "order"),
		    options = $7,
		    updated_at = NOW()
		WHERE id = $2 AND form_id = $1
		RETURNING `+questionColumns,
		formID, questionID, string(in.Type), in.Label, in.Required, in.Order, optionsParam(in.Options)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return q, nil
}

func (s *PostgresStore) Delete(ctx context.Context, formID, questionID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id = $2 AND form_id = $1`, formID, questionID)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func (s *PostgresStore) Reorder(ctx context.Context, formID uuid.UUID, ids []uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx, `SELECT id FROM questions WHERE form_id = $1 FOR UPDATE`, formID)
	if err != nil {
		return fmt.Errorf("failed to lock questions: %w", err)
	}
	current, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return fmt.Errorf("failed to read questions: %w", err)
	}
	if !sameIDs(current, ids) {
		return ErrReorderMismatch
	}

	if _, err := tx.Exec(ctx, `
		UPDATE questions q
		SET "order" = o.idx - 1, updated_at = NOW()
		FROM unnest($2::uuid[]) WITH ORDINALITY AS o(id, idx)
		WHERE q.id = o.id AND q.form_id = $1
	`, formID, ids); err != nil {
		return fmt.Errorf("failed to reorder questions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// optionsParam maps an empty option list to SQL NULL rather than a JSON null.
func optionsParam(options []string) any {
	if len(options) == 0 {
		return nil
	}
	return options
}

// sameIDs reports whether want is a permutation of have with no repeats.
func sameIDs(have, want []uuid.UUID) bool {
	if len(have) != len(want) {
		return false
	}
	remaining := make(map[uuid.UUID]struct{}, len(have))
	for _, id := range have {
		remaining[id] = struct{}{}
	}
	for _, id := range want {
		if _, ok := remaining[id]; !ok {
			return false
		}
		delete(remaining, id)
	}
	return true
}

func scanQuestion(row pgx.Row) (*Question, error) {
	var q Question
	var typeName string
	if err := row.Scan(
		&q.ID,
		&q.FormID,
		&typeName,
		&q.Label,
		&q.Required,
		&q.Order,
		&q.Options,
		&q.CreatedAt,
		&q.UpdatedAt,
	); err != nil {
		return nil, err
	}
	q.Type = Type(typeName)
	return &q, nil
}
