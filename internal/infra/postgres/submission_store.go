package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-capture-service/internal/domain"
)

// SubmissionStore persists captured payloads in the submissions table. The
// content column is JSONB carrying the caller's body unchanged.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

func (s *SubmissionStore) Create(ctx context.Context, content json.RawMessage) (domain.Submission, error) {
	id := uuid.NewString()
	var created time.Time
	err := s.pool.QueryRow(ctx,
		`INSERT INTO submissions (id, content, created_at) VALUES ($1, $2::jsonb, now())
		 RETURNING created_at`,
		id, string(content),
	).Scan(&created)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("create submission: %w", err)
	}
	return domain.Submission{
		ID:        id,
		Content:   append(json.RawMessage(nil), content...),
		Timestamp: created,
	}, nil
}

func (s *SubmissionStore) ListRecent(ctx context.Context, limit int) ([]domain.Submission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, content, ai_solution, ai_error, created_at
		 FROM submissions ORDER BY created_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Submission, 0, limit)
	for rows.Next() {
		rec, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SubmissionStore) SetSolution(ctx context.Context, id, solution string) (domain.Submission, error) {
	return s.resolve(ctx, id,
		`UPDATE submissions SET ai_solution = $2
		 WHERE id = $1 AND ai_solution IS NULL AND ai_error IS NULL
		 RETURNING id, content, ai_solution, ai_error, created_at`, solution)
}

func (s *SubmissionStore) SetSolveError(ctx context.Context, id, message string) (domain.Submission, error) {
	return s.resolve(ctx, id,
		`UPDATE submissions SET ai_error = $2
		 WHERE id = $1 AND ai_solution IS NULL AND ai_error IS NULL
		 RETURNING id, content, ai_solution, ai_error, created_at`, message)
}

// resolve applies the single allowed enrichment mutation. The WHERE clause
// leaves an already-resolved record untouched; the follow-up lookup tells a
// missing record apart from a second resolution attempt.
func (s *SubmissionStore) resolve(ctx context.Context, id, query, value string) (domain.Submission, error) {
	rec, err := scanSubmission(s.pool.QueryRow(ctx, query, id, value))
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if checkErr := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM submissions WHERE id = $1)`, id,
		).Scan(&exists); checkErr != nil {
			return domain.Submission{}, fmt.Errorf("check submission %s: %w", id, checkErr)
		}
		if exists {
			return domain.Submission{}, domain.ErrAlreadyResolved
		}
		return domain.Submission{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("update submission %s: %w", id, err)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (domain.Submission, error) {
	var (
		rec      domain.Submission
		content  []byte
		solution *string
		aiErr    *string
	)
	if err := row.Scan(&rec.ID, &content, &solution, &aiErr, &rec.Timestamp); err != nil {
		return domain.Submission{}, err
	}
	rec.Content = json.RawMessage(content)
	if solution != nil {
		rec.AISolution = *solution
	}
	if aiErr != nil {
		rec.AIError = *aiErr
	}
	return rec, nil
}
