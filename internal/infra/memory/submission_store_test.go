package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"quiz-capture-service/internal/domain"
)

func TestSubmissionStoreListRecentCapsAndOrders(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)
	store := NewSubmissionStoreWithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	})

	for i := 0; i < 35; i++ {
		content := json.RawMessage(fmt.Sprintf(`{"data":{"generated":"Q%d"}}`, i))
		if _, err := store.Create(ctx, content); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	records, err := store.ListRecent(ctx, 30)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 30 {
		t.Fatalf("expected 30 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.After(records[i-1].Timestamp) {
			t.Fatalf("records not sorted newest first at %d", i)
		}
	}
	if string(records[0].Content) != `{"data":{"generated":"Q34"}}` {
		t.Fatalf("expected newest record first, got %s", records[0].Content)
	}
}

func TestSubmissionStoreEnrichmentIsOneShot(t *testing.T) {
	ctx := context.Background()
	store := NewSubmissionStore()

	rec, err := store.Create(ctx, json.RawMessage(`{"data":{"generated":"Q1"}}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := store.SetSolution(ctx, rec.ID, "Réponse: 42")
	if err != nil {
		t.Fatalf("set solution: %v", err)
	}
	if updated.AISolution != "Réponse: 42" || updated.AIError != "" {
		t.Fatalf("unexpected record %+v", updated)
	}

	if _, err := store.SetSolveError(ctx, rec.ID, "boom"); !errors.Is(err, domain.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	if _, err := store.SetSolution(ctx, "missing", "x"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestSubmissionStoreCopiesContent(t *testing.T) {
	ctx := context.Background()
	store := NewSubmissionStore()

	content := json.RawMessage(`{"data":{"generated":"Q1"}}`)
	rec, err := store.Create(ctx, content)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	content[2] = 'X'
	if string(rec.Content) != `{"data":{"generated":"Q1"}}` {
		t.Fatalf("stored content aliases the caller's buffer: %s", rec.Content)
	}
}
