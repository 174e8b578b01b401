package memory

import (
	"context"
	"errors"
	"testing"

	"quiz-capture-service/internal/domain"
)

func TestQuizStoreTransitionIsOneShot(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	rec, err := store.Create(ctx, "Processing...")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", rec.Status)
	}

	updated, err := store.SetOutcome(ctx, rec.ID, domain.ExtractionOutcome{
		Status:           domain.StatusCompleted,
		ExtractedContent: "Q1: ...",
	})
	if err != nil {
		t.Fatalf("set outcome: %v", err)
	}
	if updated.Status != domain.StatusCompleted || updated.ExtractedContent != "Q1: ..." {
		t.Fatalf("unexpected record %+v", updated)
	}

	// no transition out of a terminal state
	_, err = store.SetOutcome(ctx, rec.ID, domain.ExtractionOutcome{Status: domain.StatusIgnored})
	if !errors.Is(err, domain.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}

	_, err = store.SetOutcome(ctx, "missing", domain.ExtractionOutcome{Status: domain.StatusError})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestQuizStoreErrorOutcomeKeepsPlaceholder(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	rec, _ := store.Create(ctx, "Processing...")
	updated, err := store.SetOutcome(ctx, rec.ID, domain.ExtractionOutcome{
		Status: domain.StatusError,
		Error:  "Échec de l'extraction du QCM. Veuillez réessayer plus tard.",
	})
	if err != nil {
		t.Fatalf("set outcome: %v", err)
	}
	if updated.ExtractedContent != "Processing..." {
		t.Fatalf("expected placeholder kept, got %q", updated.ExtractedContent)
	}
	if updated.Status != domain.StatusError || updated.Error == "" {
		t.Fatalf("unexpected record %+v", updated)
	}
}
