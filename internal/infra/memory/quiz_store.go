package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-capture-service/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizStore.
type QuizStore struct {
	mu      sync.RWMutex
	clock   func() time.Time
	records []domain.ExtractedQuiz
	index   map[string]int
}

func NewQuizStore() *QuizStore {
	return &QuizStore{
		clock: time.Now,
		index: make(map[string]int),
	}
}

// NewQuizStoreWithClock is test-only for deterministic timestamps.
func NewQuizStoreWithClock(now func() time.Time) *QuizStore {
	s := NewQuizStore()
	s.clock = now
	return s
}

func (s *QuizStore) Create(_ context.Context, placeholder string) (domain.ExtractedQuiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := domain.ExtractedQuiz{
		ID:               uuid.NewString(),
		ExtractedContent: placeholder,
		Status:           domain.StatusPending,
		Timestamp:        s.clock(),
	}
	s.index[rec.ID] = len(s.records)
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *QuizStore) ListRecent(_ context.Context, limit int) ([]domain.ExtractedQuiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ExtractedQuiz, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *QuizStore) SetOutcome(_ context.Context, id string, outcome domain.ExtractionOutcome) (domain.ExtractedQuiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return domain.ExtractedQuiz{}, domain.ErrRecordNotFound
	}
	if s.records[i].Status.Terminal() {
		return domain.ExtractedQuiz{}, domain.ErrAlreadyResolved
	}
	s.records[i].Status = outcome.Status
	if outcome.ExtractedContent != "" {
		s.records[i].ExtractedContent = outcome.ExtractedContent
	}
	s.records[i].Error = outcome.Error
	return s.records[i], nil
}

// Len is test-only.
func (s *QuizStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
