package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func newTestCapture(capacity int) (*CaptureHandler, *slog.Logger) {
	next := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	h := NewCaptureHandler(next, capacity)
	return h, slog.New(h)
}

func TestCaptureRecent(t *testing.T) {
	h, logger := newTestCapture(10)

	logger.Info("first")
	logger.Warn("second")
	logger.Error("third")

	entries := h.Recent(0)
	if len(entries) != 3 {
		t.Fatalf("Recent(0) returned %d entries, want 3", len(entries))
	}

	wantMessages := []string{"first", "second", "third"}
	wantLevels := []string{"INFO", "WARN", "ERROR"}
	for i, entry := range entries {
		if entry.Message != wantMessages[i] {
			t.Errorf("entry %d message = %q, want %q", i, entry.Message, wantMessages[i])
		}
		if entry.Level != wantLevels[i] {
			t.Errorf("entry %d level = %q, want %q", i, entry.Level, wantLevels[i])
		}
	}
}

func TestCaptureRecentLimit(t *testing.T) {
	h, logger := newTestCapture(10)

	logger.Info("one")
	logger.Info("two")
	logger.Info("three")

	entries := h.Recent(2)
	if len(entries) != 2 {
		t.Fatalf("Recent(2) returned %d entries, want 2", len(entries))
	}
	if entries[0].Message != "two" || entries[1].Message != "three" {
		t.Errorf("Recent(2) = [%q, %q], want [two, three]", entries[0].Message, entries[1].Message)
	}
}

func TestCaptureRingOverwrites(t *testing.T) {
	h, logger := newTestCapture(3)

	logger.Info("a")
	logger.Info("b")
	logger.Info("c")
	logger.Info("d")

	entries := h.Recent(0)
	if len(entries) != 3 {
		t.Fatalf("Recent(0) returned %d entries, want 3", len(entries))
	}

	want := []string{"b", "c", "d"}
	for i, entry := range entries {
		if entry.Message != want[i] {
			t.Errorf("entry %d = %q, want %q", i, entry.Message, want[i])
		}
	}
}

func TestCaptureAttrs(t *testing.T) {
	h, logger := newTestCapture(10)

	logger.With("module", "ssh").Info("connected", "host", "db01")

	entries := h.Recent(0)
	if len(entries) != 1 {
		t.Fatalf("Recent(0) returned %d entries, want 1", len(entries))
	}

	attrs := entries[0].Attrs
	if attrs["module"] != "ssh" {
		t.Errorf("attrs[module] = %v, want ssh", attrs["module"])
	}
	if attrs["host"] != "db01" {
		t.Errorf("attrs[host] = %v, want db01", attrs["host"])
	}
}

func TestCaptureClear(t *testing.T) {
	h, logger := newTestCapture(10)

	logger.Info("before")
	h.Clear()

	if entries := h.Recent(0); len(entries) != 0 {
		t.Errorf("Recent(0) after Clear returned %d entries, want 0", len(entries))
	}

	logger.Info("after")
	entries := h.Recent(0)
	if len(entries) != 1 || entries[0].Message != "after" {
		t.Errorf("Recent(0) = %v, want single entry %q", entries, "after")
	}
}

func TestCaptureForward(t *testing.T) {
	h, logger := newTestCapture(10)

	var forwarded []CapturedEntry
	h.SetForward(func(e CapturedEntry) {
		forwarded = append(forwarded, e)
	})

	logger.Info("live")
	if len(forwarded) != 1 || forwarded[0].Message != "live" {
		t.Fatalf("forward sink got %v, want single entry %q", forwarded, "live")
	}

	h.SetForward(nil)
	logger.Info("silent")
	if len(forwarded) != 1 {
		t.Errorf("forward sink called after detach, got %d entries", len(forwarded))
	}
}

func TestCaptureEnabledFollowsNext(t *testing.T) {
	next := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn})
	h := NewCaptureHandler(next, 10)

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(debug) = true with a warn-level inner handler")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false with a warn-level inner handler")
	}
}
