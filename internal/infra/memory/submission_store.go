package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-capture-service/internal/domain"
)

// SubmissionStore is an in-memory implementation of app.SubmissionStore.
type SubmissionStore struct {
	mu      sync.RWMutex
	clock   func() time.Time
	records []domain.Submission
	index   map[string]int
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		clock: time.Now,
		index: make(map[string]int),
	}
}

// NewSubmissionStoreWithClock is test-only for deterministic timestamps.
func NewSubmissionStoreWithClock(now func() time.Time) *SubmissionStore {
	s := NewSubmissionStore()
	s.clock = now
	return s
}

func (s *SubmissionStore) Create(_ context.Context, content json.RawMessage) (domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := domain.Submission{
		ID:        uuid.NewString(),
		Content:   append(json.RawMessage(nil), content...),
		Timestamp: s.clock(),
	}
	s.index[rec.ID] = len(s.records)
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *SubmissionStore) ListRecent(_ context.Context, limit int) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// reverse insertion order first so equal timestamps keep newest-first
	out := make([]domain.Submission, 0, len(s.records))
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

func (s *SubmissionStore) SetSolution(_ context.Context, id, solution string) (domain.Submission, error) {
	return s.mutate(id, func(rec *domain.Submission) {
		rec.AISolution = solution
	})
}

func (s *SubmissionStore) SetSolveError(_ context.Context, id, message string) (domain.Submission, error) {
	return s.mutate(id, func(rec *domain.Submission) {
		rec.AIError = message
	})
}

func (s *SubmissionStore) mutate(id string, apply func(*domain.Submission)) (domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Submission{}, domain.ErrRecordNotFound
	}
	if s.records[i].AISolution != "" || s.records[i].AIError != "" {
		return domain.Submission{}, domain.ErrAlreadyResolved
	}
	apply(&s.records[i])
	return s.records[i], nil
}

// Len is test-only.
func (s *SubmissionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
