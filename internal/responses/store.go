package responses

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists responses and their answers.
type Store interface {
	// Create stores the response and all answers in one transaction.
	Create(ctx context.Context, formID uuid.UUID, answers []Answer) (*Response, error)
	Count(ctx context.Context, formID uuid.UUID, from *time.Time) (int, error)
	// ListPage returns responses newest first, each with its answers ordered
	// by question id.
	ListPage(ctx context.Context, formID uuid.UUID, from *time.Time, limit, offset int) ([]ResponseWithAnswers, error)
}

// PostgresStore implements Store on top of a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, formID uuid.UUID, answers []Answer) (*Response, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var resp Response
	if err := tx.QueryRow(ctx, `
		INSERT INTO responses (form_id)
		VALUES ($1)
		RETURNING id, form_id, created_at
	`, formID).Scan(&resp.ID, &resp.FormID, &resp.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create response: %w", err)
	}

	if len(answers) > 0 {
		batch := &pgx.Batch{}
		for _, a := range answers {
			value, err := json.Marshal(a.Value)
			if err != nil {
				return nil, fmt.Errorf("failed to encode answer: %w", err)
			}
			batch.Queue(`
				INSERT INTO answers (response_id, question_id, value)
				VALUES ($1, $2, $3)
			`, resp.ID, a.QuestionID, value)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, fmt.Errorf("failed to create answers: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &resp, nil
}

func (s *PostgresStore) Count(ctx context.Context, formID uuid.UUID, from *time.Time) (int, error) {
	var total int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM responses
		WHERE form_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
	`, formID, from).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) ListPage(ctx context.Context, formID uuid.UUID, from *time.Time, limit, offset int) ([]ResponseWithAnswers, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, form_id, created_at
		FROM responses
		WHERE form_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`, formID, from, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ResponseWithAnswers, error) {
		var item ResponseWithAnswers
		err := row.Scan(&item.ID, &item.FormID, &item.CreatedAt)
		item.Answers = []Answer{}
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan responses: %w", err)
	}
	if len(items) == 0 {
		return []ResponseWithAnswers{}, nil
	}

	ids := make([]uuid.UUID, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for i, item := range items {
		ids[i] = item.ID
		index[item.ID] = i
	}

	answerRows, err := s.pool.Query(ctx, `
		SELECT response_id, question_id, value
		FROM answers
		WHERE response_id = ANY($1)
		ORDER BY response_id, question_id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer answerRows.Close()

	for answerRows.Next() {
		var responseID uuid.UUID
		var answer Answer
		var raw []byte
		if err := answerRows.Scan(&responseID, &answer.QuestionID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		if err := json.Unmarshal(raw, &answer.Value); err != nil {
			return nil, fmt.Errorf("failed to decode answer %s: %w", answer.QuestionID, err)
		}
		i := index[responseID]
		items[i].Answers = append(items[i].Answers, answer)
	}
	if err := answerRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answers: %w", err)
	}

	return items, nil
}
