package app

import (
	"context"

	"quiz-capture-service/internal/domain"
)

// FlagExtractQuiz gates the HTML extraction endpoint.
const FlagExtractQuiz = "extract_quiz_enabled"

// ConfigService exposes configuration lookups and updates.
type ConfigService struct {
	store ConfigStore
}

func NewConfigService(store ConfigStore) *ConfigService {
	return &ConfigService{store: store}
}

// InitializeDefaults seeds the fixed default keys. Seeding is
// insert-if-absent: a value changed by an operator survives restarts.
func (s *ConfigService) InitializeDefaults(ctx context.Context) error {
	defaults := []struct {
		key         string
		value       any
		description string
	}{
		{FlagExtractQuiz, true, "Enable or disable the quiz extraction feature"},
	}
	for _, d := range defaults {
		if err := s.store.EnsureDefault(ctx, d.key, d.value, d.description); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the entry for key, or domain.ErrConfigNotFound.
func (s *ConfigService) Get(ctx context.Context, key string) (domain.ConfigEntry, error) {
	return s.store.Get(ctx, key)
}

// Set upserts the value for key and refreshes its updatedAt.
func (s *ConfigService) Set(ctx context.Context, key string, value any) (domain.ConfigEntry, error) {
	return s.store.Set(ctx, key, value)
}

// ExtractEnabled reports whether the quiz extraction flag is on. A missing
// key or a non-boolean value counts as disabled.
func (s *ConfigService) ExtractEnabled(ctx context.Context) bool {
	entry, err := s.store.Get(ctx, FlagExtractQuiz)
	if err != nil {
		return false
	}
	enabled, ok := entry.Value.(bool)
	return ok && enabled
}
