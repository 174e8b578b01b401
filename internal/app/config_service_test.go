package app_test

import (
	"context"
	"errors"
	"testing"

	"quiz-capture-service/internal/app"
	"quiz-capture-service/internal/domain"
	"quiz-capture-service/internal/infra/memory"
)

func TestConfigDefaultsSeedOnce(t *testing.T) {
	ctx := context.Background()
	service := app.NewConfigService(memory.NewConfigStore())

	if err := service.InitializeDefaults(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !service.ExtractEnabled(ctx) {
		t.Fatalf("expected extraction enabled by default")
	}

	// an operator override survives re-seeding on restart
	if _, err := service.Set(ctx, app.FlagExtractQuiz, false); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := service.InitializeDefaults(ctx); err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	if service.ExtractEnabled(ctx) {
		t.Fatalf("expected operator override to survive seeding")
	}
}

func TestConfigSetThenGet(t *testing.T) {
	ctx := context.Background()
	service := app.NewConfigService(memory.NewConfigStore())

	if _, err := service.Get(ctx, "missing"); !errors.Is(err, domain.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}

	if _, err := service.Set(ctx, "max_items", float64(12)); err != nil {
		t.Fatalf("set: %v", err)
	}
	entry, err := service.Get(ctx, "max_items")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry.Value != float64(12) {
		t.Fatalf("expected 12, got %v", entry.Value)
	}
	if entry.UpdatedAt.IsZero() {
		t.Fatalf("expected updatedAt to be set")
	}
}
