package journal

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/hushwire/voxd/internal/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestOpenEphemeralIsNoOp(t *testing.T) {
	ctx := context.Background()
	cfg := config.JournalConfig{RetentionMode: "ephemeral"}
	s, err := Open(ctx, cfg, newLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.RecordSession(ctx, "sess", "mock"); err != nil {
		t.Fatalf("record session: %v", err)
	}
	transitions, err := s.ListTransitions(ctx, "sess", 10)
	if err != nil {
		t.Fatalf("list transitions: %v", err)
	}
	if transitions != nil {
		t.Fatal("ephemeral journal must not return rows")
	}
}

func TestRecordAndList(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.JournalConfig{Path: filepath.Join(tmp, "journal.db"), RetentionMode: "session"}
	s, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	sessionID := "session-123"
	if err := s.RecordSession(ctx, sessionID, "whisper"); err != nil {
		t.Fatalf("record session: %v", err)
	}
	if err := s.RecordTransition(ctx, sessionID, "recording", "", ""); err != nil {
		t.Fatalf("record transition: %v", err)
	}
	if err := s.RecordTransition(ctx, sessionID, "idle", "backend", "status 401"); err != nil {
		t.Fatalf("record transition: %v", err)
	}

	transitions, err := s.ListTransitions(ctx, sessionID, 10)
	if err != nil {
		t.Fatalf("list transitions: %v", err)
	}
	if len(transitions) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(transitions))
	}
	if transitions[0].Status != "recording" {
		t.Fatalf("unexpected first status %q", transitions[0].Status)
	}
	if transitions[1].ErrorClass != "backend" || transitions[1].Detail != "status 401" {
		t.Fatalf("unexpected failure row: %+v", transitions[1])
	}
}

func TestPruneByDaysAndSessions(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.JournalConfig{Path: filepath.Join(tmp, "journal.db"), RetentionMode: "persistent", RetentionDays: 1, MaxSessions: 1}
	s, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	s.clock = func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }
	if err := s.RecordSession(ctx, "old-session", "mock"); err != nil {
		t.Fatalf("record session: %v", err)
	}
	if err := s.RecordTransition(ctx, "old-session", "recording", "", ""); err != nil {
		t.Fatalf("record transition: %v", err)
	}

	s.clock = func() time.Time { return time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC) }
	if err := s.RecordSession(ctx, "new-session", "mock"); err != nil {
		t.Fatalf("record session: %v", err)
	}
	if err := s.Prune(ctx); err != nil {
		t.Fatalf("prune: %v", err)
	}

	transitions, err := s.ListTransitions(ctx, "old-session", 10)
	if err != nil {
		t.Fatalf("list transitions: %v", err)
	}
	if len(transitions) != 0 {
		t.Fatal("expected old session pruned")
	}
}
