package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnsureInitialized_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s := New(path)
	if err := s.EnsureInitialized(); err != nil {
		t.Fatalf("EnsureInitialized() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestEnsureInitialized_Idempotent(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "cache.db"))
	defer s.Close()

	for i := 0; i < 3; i++ {
		if err := s.EnsureInitialized(); err != nil {
			t.Fatalf("EnsureInitialized() iteration %d failed: %v", i, err)
		}
	}

	// Verify schema is intact
	db, err := s.conn()
	if err != nil {
		t.Fatalf("conn() failed: %v", err)
	}
	tables := []string{"billing_transactions", "billing_positions", "menus"}
	for _, table := range tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent init: %v", table, err)
		}
	}
}

func TestEnsureInitialized_UnwritablePath(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing", "\x00", "cache.db"))
	err := s.EnsureInitialized()
	if err == nil {
		s.Close()
		t.Fatal("EnsureInitialized() succeeded on unwritable path")
	}
	if !IsStorageError(err) {
		t.Errorf("error is not a StorageError: %v", err)
	}
}

func TestClose_ReopensOnDemand(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	month := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	if err := s.InsertBillingMonth(ctx, createTestBillingMonth(month, 1)); err != nil {
		t.Fatalf("InsertBillingMonth() failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	// Operations after Close reinitialize transparently.
	got, err := s.ReadBillingMonth(ctx, month)
	if err != nil {
		t.Fatalf("ReadBillingMonth() after Close failed: %v", err)
	}
	if got == nil {
		t.Fatal("month missing after reopen")
	}
}

func TestSetPath_RedirectsStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := New(filepath.Join(dir, "a.db"))
	defer s.Close()

	month := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	if err := s.InsertBillingMonth(ctx, createTestBillingMonth(month, 2)); err != nil {
		t.Fatalf("InsertBillingMonth() failed: %v", err)
	}

	if err := s.SetPath(filepath.Join(dir, "b.db")); err != nil {
		t.Fatalf("SetPath() failed: %v", err)
	}

	// The new database is empty; the old data lives in a.db only.
	got, err := s.ReadBillingMonth(ctx, month)
	if err != nil {
		t.Fatalf("ReadBillingMonth() failed: %v", err)
	}
	if got != nil {
		t.Error("redirected store still returns data from the old file")
	}

	if err := s.SetPath(filepath.Join(dir, "a.db")); err != nil {
		t.Fatalf("SetPath() back failed: %v", err)
	}
	got, err = s.ReadBillingMonth(ctx, month)
	if err != nil {
		t.Fatalf("ReadBillingMonth() failed: %v", err)
	}
	if got == nil {
		t.Error("original data lost after redirecting back")
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	checks := map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
	}
	for pragma, want := range checks {
		if err := s.verifyPragma(pragma, want); err != nil {
			t.Errorf("pragma check failed: %v", err)
		}
	}
}
