package app

import (
	"context"
	"encoding/json"
	"log"

	"golang.org/x/sync/semaphore"

	"quiz-capture-service/internal/domain"
)

// SubmissionService persists quiz payloads and enriches them in the
// background: the caller gets the unenriched record back immediately, the AI
// outcome arrives later through the store and the broadcast channel.
type SubmissionService struct {
	store     SubmissionStore
	solver    QuizSolver
	broadcast Broadcaster
	gate      *semaphore.Weighted
}

func NewSubmissionService(store SubmissionStore, solver QuizSolver, broadcast Broadcaster, gate *semaphore.Weighted) *SubmissionService {
	return &SubmissionService{
		store:     store,
		solver:    solver,
		broadcast: broadcast,
		gate:      gate,
	}
}

// Submit persists the payload, broadcasts the created record, and schedules
// enrichment. A nil record with a nil error means the payload carried no quiz
// data: nothing was stored, broadcast, or sent to the model.
func (s *SubmissionService) Submit(ctx context.Context, content json.RawMessage) (*domain.Submission, error) {
	if !domain.HasQuizData(content) {
		return nil, nil
	}

	rec, err := s.store.Create(ctx, content)
	if err != nil {
		return nil, err
	}
	s.broadcast.Emit(EventNewData, rec)

	go s.enrich(rec)
	return &rec, nil
}

// ListRecent returns the newest submissions, capped at ListLimit.
func (s *SubmissionService) ListRecent(ctx context.Context) ([]domain.Submission, error) {
	return s.store.ListRecent(ctx, ListLimit)
}

// enrich runs after the HTTP response is sent. The request context is gone by
// then, so the call runs on its own context; failures reach the record and
// the broadcast, never the original caller.
func (s *SubmissionService) enrich(rec domain.Submission) {
	ctx := context.Background()
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return
	}
	defer s.gate.Release(1)

	solution, err := s.solver.SolveQuiz(ctx, rec.Content)
	if err != nil {
		log.Printf("ai solution failed for submission %s: %v", rec.ID, err)
		if _, storeErr := s.store.SetSolveError(ctx, rec.ID, err.Error()); storeErr != nil {
			log.Printf("store ai error for submission %s: %v", rec.ID, storeErr)
			return
		}
		s.broadcast.Emit(EventAIError, ErrorEvent{ID: rec.ID, Error: err.Error()})
		return
	}

	if _, err := s.store.SetSolution(ctx, rec.ID, solution); err != nil {
		log.Printf("store ai solution for submission %s: %v", rec.ID, err)
		return
	}
	s.broadcast.Emit(EventAISolution, SolutionEvent{ID: rec.ID, AISolution: solution})
}
