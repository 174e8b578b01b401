package app

import (
	"context"
	"log"
	"strings"

	"golang.org/x/sync/semaphore"

	"quiz-capture-service/internal/domain"
)

const (
	// PlaceholderContent fills extractedContent until the model answers.
	PlaceholderContent = "Processing..."
	// NoQuizFoundMessage replaces the placeholder when the model reports no QCM.
	NoQuizFoundMessage = "Aucun QCM trouvé dans le HTML"

	// sentinelNoQuiz is the model's fixed reply when the page holds no quiz.
	sentinelNoQuiz = "NONE"
)

// ExtractionService turns raw HTML into extracted-quiz records through the
// same persist-respond-enrich-broadcast flow as submissions, with a
// three-state terminal lifecycle: completed, ignored, or error.
type ExtractionService struct {
	store     QuizStore
	config    *ConfigService
	solver    QuizSolver
	broadcast Broadcaster
	gate      *semaphore.Weighted
}

func NewExtractionService(store QuizStore, config *ConfigService, solver QuizSolver, broadcast Broadcaster, gate *semaphore.Weighted) *ExtractionService {
	return &ExtractionService{
		store:     store,
		config:    config,
		solver:    solver,
		broadcast: broadcast,
		gate:      gate,
	}
}

// Extract validates the request, creates the pending placeholder record,
// broadcasts it, and schedules enrichment. Both validation failures happen
// before any record exists: empty HTML returns domain.ErrEmptyHTML and a
// disabled flag returns domain.ErrFeatureDisabled.
func (s *ExtractionService) Extract(ctx context.Context, html string) (domain.ExtractedQuiz, error) {
	if strings.TrimSpace(html) == "" {
		return domain.ExtractedQuiz{}, domain.ErrEmptyHTML
	}
	if !s.config.ExtractEnabled(ctx) {
		return domain.ExtractedQuiz{}, domain.ErrFeatureDisabled
	}

	rec, err := s.store.Create(ctx, PlaceholderContent)
	if err != nil {
		return domain.ExtractedQuiz{}, err
	}
	s.broadcast.Emit(EventNewExtractedQuiz, rec)

	go s.enrich(rec, html)
	return rec, nil
}

// ListRecent returns the newest extracted quizzes, capped at ListLimit.
func (s *ExtractionService) ListRecent(ctx context.Context) ([]domain.ExtractedQuiz, error) {
	return s.store.ListRecent(ctx, ListLimit)
}

func (s *ExtractionService) enrich(rec domain.ExtractedQuiz, html string) {
	ctx := context.Background()
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return
	}
	defer s.gate.Release(1)

	result, err := s.solver.ExtractQuiz(ctx, html)
	if err != nil {
		log.Printf("quiz extraction failed for %s: %v", rec.ID, err)
		// the placeholder content stays as-is on error
		if _, storeErr := s.store.SetOutcome(ctx, rec.ID, domain.ExtractionOutcome{
			Status: domain.StatusError,
			Error:  err.Error(),
		}); storeErr != nil {
			log.Printf("store extraction error for %s: %v", rec.ID, storeErr)
			return
		}
		s.broadcast.Emit(EventExtractionError, ErrorEvent{ID: rec.ID, Error: err.Error()})
		return
	}

	outcome := domain.ExtractionOutcome{Status: domain.StatusCompleted, ExtractedContent: result}
	event := EventQuizExtracted
	if result == sentinelNoQuiz {
		outcome = domain.ExtractionOutcome{Status: domain.StatusIgnored, ExtractedContent: NoQuizFoundMessage}
		event = EventQuizIgnored
	}

	updated, err := s.store.SetOutcome(ctx, rec.ID, outcome)
	if err != nil {
		log.Printf("store extraction outcome for %s: %v", rec.ID, err)
		return
	}
	s.broadcast.Emit(event, QuizUpdateEvent{
		ID:               updated.ID,
		ExtractedContent: updated.ExtractedContent,
		Status:           updated.Status,
	})
}
