package memory

import (
	"context"
	"errors"
	"testing"

	"weighttrack/internal/domain"
)

func TestWeightStore(t *testing.T) {
	db := New()
	ctx := context.Background()

	// Create
	first, err := db.Create(ctx, domain.WeightInput{Weight: 72.5, Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID == "" {
		t.Error("expected non-empty ID")
	}
	second, _ := db.Create(ctx, domain.WeightInput{Weight: 71.9, Date: "2024-01-08"})
	if second.ID == first.ID {
		t.Error("expected unique IDs")
	}

	// List keeps insertion order
	entries, err := db.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != first.ID || entries[1].ID != second.ID {
		t.Errorf("unexpected order: %v", entries)
	}

	// Callers get a copy
	entries[0].Weight = 1
	again, _ := db.List(ctx)
	if again[0].Weight != 72.5 {
		t.Error("List must return a copy")
	}

	// Update
	updated, err := db.Update(ctx, first.ID, domain.WeightInput{Weight: 73, Date: "2024-01-02"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != first.ID || updated.Weight != 73 || updated.Date != "2024-01-02" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	// Delete
	if err := db.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	entries, _ = db.List(ctx)
	if len(entries) != 1 || entries[0].ID != second.ID {
		t.Errorf("expected only the second entry, got %v", entries)
	}
}

func TestWeightStoreNotFound(t *testing.T) {
	db := New()
	ctx := context.Background()

	if _, err := db.Update(ctx, "missing", domain.WeightInput{Weight: 1, Date: "2024-01-01"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update: expected ErrNotFound, got %v", err)
	}
	if err := db.Delete(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
}
