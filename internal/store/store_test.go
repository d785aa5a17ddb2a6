package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riddhika-19/openboxcodelearn/internal/store"
	"github.com/riddhika-19/openboxcodelearn/internal/store/storetest"
)

func openTestStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "openbox.db"), opts...)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil database handle")
	}
	if s.MistakeRepo() == nil {
		t.Fatal("expected non-nil mistake repo")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openbox.db")
	ctx := t.Context()

	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, _, err := s.MistakeRepo().Insert(ctx, storetest.Event("ada", "syntax", "Basic Syntax")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	s.Close()

	s, err = store.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	_, n, err := s.MistakeRepo().Insert(ctx, storetest.Event("ada", "logic", "Loops"))
	if err != nil {
		t.Fatalf("insert after reopen: %v", err)
	}
	if n != 2 {
		t.Errorf("history size after reopen = %d, want 2", n)
	}
}

func TestMistakeRepoContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, now func() time.Time) store.MistakeRepo {
		return openTestStore(t, store.WithClock(now)).MistakeRepo()
	})
}

func TestDefaultDBPath(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		want := filepath.Join(t.TempDir(), "nested", "custom.db")
		t.Setenv("OPENBOX_DB", want)

		got, err := store.DefaultDBPath()
		if err != nil {
			t.Fatalf("DefaultDBPath: %v", err)
		}
		if got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
		if _, err := os.Stat(filepath.Dir(want)); err != nil {
			t.Errorf("parent dir not created: %v", err)
		}
	})

	t.Run("xdg data home", func(t *testing.T) {
		dataHome := t.TempDir()
		t.Setenv("OPENBOX_DB", "")
		t.Setenv("XDG_DATA_HOME", dataHome)

		got, err := store.DefaultDBPath()
		if err != nil {
			t.Fatalf("DefaultDBPath: %v", err)
		}
		want := filepath.Join(dataHome, "openbox", "openbox.db")
		if got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
	})
}
