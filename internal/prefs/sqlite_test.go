package prefs

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return s
}

func TestPreferencesEmpty(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	zip, ok, err := s.PostalCode(ctx)
	if err != nil {
		t.Fatalf("PostalCode: %v", err)
	}
	if ok || zip != "" {
		t.Fatalf("PostalCode: got %q ok=%v, want empty", zip, ok)
	}

	at, ok, err := s.ReminderTime(ctx)
	if err != nil {
		t.Fatalf("ReminderTime: %v", err)
	}
	if ok || !at.IsZero() {
		t.Fatalf("ReminderTime: got %v ok=%v, want zero", at, ok)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SetPostalCode(ctx, "02134"); err != nil {
		t.Fatalf("SetPostalCode: %v", err)
	}
	if err := s.SetPostalCode(ctx, "94110"); err != nil {
		t.Fatalf("SetPostalCode overwrite: %v", err)
	}
	want := time.Date(2024, 5, 1, 19, 30, 0, 0, time.UTC)
	if err := s.SetReminderTime(ctx, want); err != nil {
		t.Fatalf("SetReminderTime: %v", err)
	}

	p, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.PostalCode != "94110" {
		t.Fatalf("PostalCode: got %q, want 94110", p.PostalCode)
	}
	if !p.ReminderTime.Equal(want) {
		t.Fatalf("ReminderTime: got %v, want %v", p.ReminderTime, want)
	}
}

func TestPreferencesPersistAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.SetPostalCode(ctx, "10001"); err != nil {
		t.Fatalf("SetPostalCode: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	zip, ok, err := s.PostalCode(ctx)
	if err != nil || !ok || zip != "10001" {
		t.Fatalf("PostalCode after reopen: got %q ok=%v err=%v", zip, ok, err)
	}
}

func TestReminderTimeCorrupt(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.set(ctx, keyReminderTime, "half past seven"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, _, err := s.ReminderTime(ctx); err == nil {
		t.Fatal("expected parse error for corrupt reminder time")
	}
}
