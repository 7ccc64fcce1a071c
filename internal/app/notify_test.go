package app_test

import (
	"bytes"
	"testing"

	"weighttrack/internal/app"
	"weighttrack/internal/domain"
)

func TestChanNotifier_DropsOldestWhenFull(t *testing.T) {
	n := app.NewChanNotifier(2)
	for _, msg := range []string{"one", "two", "three"} {
		n.Notify(domain.Notification{Kind: domain.NotifySuccess, Message: msg})
	}

	got := []string{(<-n.C()).Message, (<-n.C()).Message}
	if got[0] != "two" || got[1] != "three" {
		t.Errorf("expected the two newest notifications, got %v", got)
	}
}

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := app.NewWriterNotifier(&buf)
	n.Notify(domain.Notification{Kind: domain.NotifySuccess, Message: "Weight entry added successfully!"})
	n.Notify(domain.Notification{Kind: domain.NotifyError, Message: "Failed"})

	want := "✓ Weight entry added successfully!\n✗ Failed\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
