package memory

import (
	"context"
	"sync"
	"time"

	"quiz-capture-service/internal/domain"
)

// ConfigStore is an in-memory implementation of app.ConfigStore.
type ConfigStore struct {
	mu      sync.RWMutex
	clock   func() time.Time
	entries map[string]domain.ConfigEntry
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		clock:   time.Now,
		entries: make(map[string]domain.ConfigEntry),
	}
}

func (s *ConfigStore) Get(_ context.Context, key string) (domain.ConfigEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return domain.ConfigEntry{}, domain.ErrConfigNotFound
	}
	return entry, nil
}

func (s *ConfigStore) Set(_ context.Context, key string, value any) (domain.ConfigEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entries[key]
	entry.Key = key
	entry.Value = value
	entry.UpdatedAt = s.clock()
	s.entries[key] = entry
	return entry, nil
}

func (s *ConfigStore) EnsureDefault(_ context.Context, key string, value any, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return nil
	}
	s.entries[key] = domain.ConfigEntry{
		Key:         key,
		Value:       value,
		Description: description,
		UpdatedAt:   s.clock(),
	}
	return nil
}
