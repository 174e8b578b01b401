package app

import (
	"context"
	"encoding/json"

	"quiz-capture-service/internal/domain"
)

// Push channel event names. Every event goes to every connected observer.
const (
	EventNewData          = "newData"
	EventAISolution       = "aiSolution"
	EventAIError          = "aiError"
	EventNewExtractedQuiz = "newExtractedQuiz"
	EventQuizExtracted    = "quizExtracted"
	EventQuizIgnored      = "quizIgnored"
	EventExtractionError  = "extractionError"
)

// ListLimit caps every listRecent response.
const ListLimit = 30

// Broadcaster fans lifecycle events out to all connected observers.
type Broadcaster interface {
	Emit(event string, payload any)
}

// QuizSolver is the external completion service seen by the pipelines.
type QuizSolver interface {
	SolveQuiz(ctx context.Context, content json.RawMessage) (string, error)
	ExtractQuiz(ctx context.Context, html string) (string, error)
}

// ConfigStore persists configuration entries (in-memory or Postgres).
type ConfigStore interface {
	Get(ctx context.Context, key string) (domain.ConfigEntry, error)
	Set(ctx context.Context, key string, value any) (domain.ConfigEntry, error)
	// EnsureDefault inserts the entry only when the key is absent, so boot-time
	// seeding never clobbers an operator override.
	EnsureDefault(ctx context.Context, key string, value any, description string) error
}

// SubmissionStore persists captured quiz payloads. SetSolution and
// SetSolveError apply the single allowed enrichment mutation.
type SubmissionStore interface {
	Create(ctx context.Context, content json.RawMessage) (domain.Submission, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Submission, error)
	SetSolution(ctx context.Context, id, solution string) (domain.Submission, error)
	SetSolveError(ctx context.Context, id, message string) (domain.Submission, error)
}

// QuizStore persists extracted-quiz records. SetOutcome applies the one-shot
// pending → terminal transition.
type QuizStore interface {
	Create(ctx context.Context, placeholder string) (domain.ExtractedQuiz, error)
	ListRecent(ctx context.Context, limit int) ([]domain.ExtractedQuiz, error)
	SetOutcome(ctx context.Context, id string, outcome domain.ExtractionOutcome) (domain.ExtractedQuiz, error)
}

// SolutionEvent is the aiSolution broadcast payload.
type SolutionEvent struct {
	ID         string `json:"id"`
	AISolution string `json:"aiSolution"`
}

// ErrorEvent is the aiError / extractionError broadcast payload.
type ErrorEvent struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// QuizUpdateEvent is the quizExtracted / quizIgnored broadcast payload.
type QuizUpdateEvent struct {
	ID               string            `json:"id"`
	ExtractedContent string            `json:"extractedContent"`
	Status           domain.QuizStatus `json:"status"`
}
