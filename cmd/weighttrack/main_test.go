package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	adapthttp "weighttrack/internal/adapter/http"
	"weighttrack/internal/adapter/memory"
	"weighttrack/internal/app"
	"weighttrack/internal/tui"
)

func TestCommands(t *testing.T) {
	store := memory.New()
	srv := httptest.NewServer(adapthttp.New(app.NewWeightService(store), nil, nil).Handler())
	defer srv.Close()

	t.Setenv("WEIGHTTRACK_API_URL", srv.URL+"/api/weights")
	t.Setenv("WEIGHTTRACK_LOG_FILE", filepath.Join(t.TempDir(), "weighttrack.log"))
	ctx := context.Background()

	run := func(t *testing.T, args ...string) (string, string) {
		t.Helper()
		var stdout, stderr bytes.Buffer
		if err := execute(ctx, args, &stdout, &stderr); err != nil {
			t.Fatalf("%v: %v\nstderr: %s", args, err, stderr.String())
		}
		return stdout.String(), stderr.String()
	}

	_, status := run(t, "add", "--weight", "72.5", "--date", "01/01/2024")
	if !strings.Contains(status, "✓ Weight entry added successfully!") {
		t.Errorf("add status = %q", status)
	}

	out, _ := run(t, "list")
	if !strings.Contains(out, "01/01/2024") || !strings.Contains(out, "72.5") {
		t.Errorf("list output missing entry:\n%s", out)
	}

	entries, err := store.List(ctx)
	if err != nil || len(entries) != 1 {
		t.Fatalf("store has %v, %v", entries, err)
	}
	id := entries[0].ID

	_, status = run(t, "edit", id, "--weight", "70")
	if !strings.Contains(status, "✓ Weight entry updated successfully!") {
		t.Errorf("edit status = %q", status)
	}
	entries, _ = store.List(ctx)
	if entries[0].Weight != 70 || entries[0].Date != "2024-01-01" {
		t.Errorf("edit did not keep the date: %+v", entries[0])
	}

	out, _ = run(t, "chart")
	if !strings.Contains(out, "Weight (kg)") {
		t.Errorf("chart output:\n%s", out)
	}

	run(t, "delete", id)
	out, _ = run(t, "chart")
	if !strings.Contains(out, tui.NoDataMessage) {
		t.Errorf("expected placeholder, got:\n%s", out)
	}
}

func TestCommands_ServerErrorIsReported(t *testing.T) {
	srv := httptest.NewServer(adapthttp.New(app.NewWeightService(memory.New()), nil, nil).Handler())
	defer srv.Close()

	t.Setenv("WEIGHTTRACK_API_URL", srv.URL+"/api/weights")
	t.Setenv("WEIGHTTRACK_LOG_FILE", filepath.Join(t.TempDir(), "weighttrack.log"))

	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), []string{"delete", "missing"}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := stderr.String(); !strings.HasPrefix(got, "✗ Failed to delete weight entry: server error 404") || strings.Contains(got, "Error:") {
		t.Errorf("stderr = %q", got)
	}
}

func TestCommands_InvalidConfig(t *testing.T) {
	t.Setenv("WEIGHTTRACK_UNIT", "stone")
	t.Setenv("WEIGHTTRACK_LOG_FILE", filepath.Join(t.TempDir(), "weighttrack.log"))

	var stdout, stderr bytes.Buffer
	if err := execute(context.Background(), []string{"list"}, &stdout, &stderr); err == nil {
		t.Fatal("expected configuration error")
	}
	if !strings.Contains(stderr.String(), "invalid unit 'stone'") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
