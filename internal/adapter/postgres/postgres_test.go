package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"weighttrack/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	connStr := os.Getenv("WEIGHTSD_TEST_DATABASE_URL")
	if connStr == "" {
		t.Skip("WEIGHTSD_TEST_DATABASE_URL not set")
	}
	db, err := Open(context.Background(), connStr)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.sql.Exec("DELETE FROM weight_entries;")
		_ = db.Close()
	})
	_, _ = db.sql.Exec("DELETE FROM weight_entries;")
	return db
}

func TestWeightStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first, err := db.Create(ctx, domain.WeightInput{Weight: 72.5, Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Date != "2024-01-01" || first.Weight != 72.5 {
		t.Errorf("unexpected created entry: %+v", first)
	}
	second, err := db.Create(ctx, domain.WeightInput{Weight: 71.9, Date: "2024-01-08"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	entries, err := db.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != first.ID || entries[1].ID != second.ID {
		t.Fatalf("unexpected entries: %v", entries)
	}

	updated, err := db.Update(ctx, first.ID, domain.WeightInput{Weight: 73, Date: "2024-01-02"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Weight != 73 || updated.Date != "2024-01-02" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	if err := db.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := db.Delete(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Delete: expected ErrNotFound, got %v", err)
	}
	if _, err := db.Update(ctx, first.ID, domain.WeightInput{Weight: 1, Date: "2024-01-01"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update of deleted entry: expected ErrNotFound, got %v", err)
	}
}
