package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-capture-service/internal/domain"
)

// QuizStore persists extracted-quiz records in the extracted_quizzes table.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

func (s *QuizStore) Create(ctx context.Context, placeholder string) (domain.ExtractedQuiz, error) {
	id := uuid.NewString()
	var created time.Time
	err := s.pool.QueryRow(ctx,
		`INSERT INTO extracted_quizzes (id, extracted_content, status, created_at)
		 VALUES ($1, $2, 'pending', now()) RETURNING created_at`,
		id, placeholder,
	).Scan(&created)
	if err != nil {
		return domain.ExtractedQuiz{}, fmt.Errorf("create extracted quiz: %w", err)
	}
	return domain.ExtractedQuiz{
		ID:               id,
		ExtractedContent: placeholder,
		Status:           domain.StatusPending,
		Timestamp:        created,
	}, nil
}

func (s *QuizStore) ListRecent(ctx context.Context, limit int) ([]domain.ExtractedQuiz, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, extracted_content, status, error, created_at
		 FROM extracted_quizzes ORDER BY created_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list extracted quizzes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ExtractedQuiz, 0, limit)
	for rows.Next() {
		rec, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan extracted quiz: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SetOutcome applies the one-shot pending → terminal transition. An empty
// outcome content keeps whatever is stored (the error path keeps the
// placeholder).
func (s *QuizStore) SetOutcome(ctx context.Context, id string, outcome domain.ExtractionOutcome) (domain.ExtractedQuiz, error) {
	rec, err := scanQuiz(s.pool.QueryRow(ctx,
		`UPDATE extracted_quizzes
		 SET status = $2,
		     extracted_content = CASE WHEN $3 = '' THEN extracted_content ELSE $3 END,
		     error = NULLIF($4, '')
		 WHERE id = $1 AND status = 'pending'
		 RETURNING id, extracted_content, status, error, created_at`,
		id, string(outcome.Status), outcome.ExtractedContent, outcome.Error))
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if checkErr := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM extracted_quizzes WHERE id = $1)`, id,
		).Scan(&exists); checkErr != nil {
			return domain.ExtractedQuiz{}, fmt.Errorf("check extracted quiz %s: %w", id, checkErr)
		}
		if exists {
			return domain.ExtractedQuiz{}, domain.ErrAlreadyResolved
		}
		return domain.ExtractedQuiz{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.ExtractedQuiz{}, fmt.Errorf("update extracted quiz %s: %w", id, err)
	}
	return rec, nil
}

func scanQuiz(row rowScanner) (domain.ExtractedQuiz, error) {
	var (
		rec    domain.ExtractedQuiz
		status string
		errMsg *string
	)
	if err := row.Scan(&rec.ID, &rec.ExtractedContent, &status, &errMsg, &rec.Timestamp); err != nil {
		return domain.ExtractedQuiz{}, err
	}
	rec.Status = domain.QuizStatus(status)
	if errMsg != nil {
		rec.Error = *errMsg
	}
	return rec, nil
}
