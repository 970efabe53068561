package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) (*Storage, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), FileName)

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		t.Fatalf("Failed to initialize: %v", err)
	}
	return db, dbPath
}

func TestOpenAndInitialize(t *testing.T) {
	db, _ := openTestDB(t)
	defer db.Close()

	initialized, err := db.IsInitialized()
	if err != nil {
		t.Fatalf("Failed to check initialization: %v", err)
	}
	if !initialized {
		t.Error("Database should be initialized")
	}

	sealed, err := db.IsSealed()
	if err != nil {
		t.Fatalf("IsSealed failed: %v", err)
	}
	if !sealed {
		t.Error("New database should be marked sealed")
	}

	id, err := db.GetVaultID()
	if err != nil {
		t.Fatalf("GetVaultID failed: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("vault ID %q is not a UUID", id)
	}
}

func TestUninitialized(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	initialized, err := db.IsInitialized()
	if err != nil {
		t.Fatalf("Failed to check initialization: %v", err)
	}
	if initialized {
		t.Error("Fresh database should not be initialized")
	}
	if _, err := db.IsSealed(); err == nil {
		t.Error("IsSealed should fail without a state bucket")
	}
}

func TestSealTransitions(t *testing.T) {
	db, _ := openTestDB(t)
	defer db.Close()

	opened := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	closed := opened.Add(time.Hour)

	if err := db.MarkUnsealed(opened); err != nil {
		t.Fatalf("MarkUnsealed failed: %v", err)
	}
	sealed, _ := db.IsSealed()
	if sealed {
		t.Error("Expected unsealed after MarkUnsealed")
	}

	if err := db.MarkSealed(closed); err != nil {
		t.Fatalf("MarkSealed failed: %v", err)
	}
	sealed, _ = db.IsSealed()
	if !sealed {
		t.Error("Expected sealed after MarkSealed")
	}

	lastUnsealed, err := db.LastUnsealed()
	if err != nil {
		t.Fatalf("LastUnsealed failed: %v", err)
	}
	if !lastUnsealed.Equal(opened) {
		t.Errorf("LastUnsealed = %v, want %v", lastUnsealed, opened)
	}
	lastSealed, err := db.LastSealed()
	if err != nil {
		t.Fatalf("LastSealed failed: %v", err)
	}
	if !lastSealed.Equal(closed) {
		t.Errorf("LastSealed = %v, want %v", lastSealed, closed)
	}

	// A second session bumps the counter; sealing does not.
	db.MarkUnsealed(closed)
	db.MarkSealed(closed)
	sessions, err := db.Sessions()
	if err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if sessions != 2 {
		t.Errorf("Sessions = %d, want 2", sessions)
	}
}

func TestZeroTimestamps(t *testing.T) {
	db, _ := openTestDB(t)
	defer db.Close()

	last, err := db.LastSealed()
	if err != nil {
		t.Fatalf("LastSealed failed: %v", err)
	}
	if !last.IsZero() {
		t.Errorf("LastSealed = %v, want zero time", last)
	}
}

func TestKDFRecord(t *testing.T) {
	db, _ := openTestDB(t)
	defer db.Close()

	scheme, iters, err := db.GetKDF()
	if err != nil {
		t.Fatalf("GetKDF failed: %v", err)
	}
	if scheme != "" || iters != 0 {
		t.Errorf("GetKDF = %q, %d; want empty", scheme, iters)
	}

	if err := db.SetKDF("pbkdf2", 100000); err != nil {
		t.Fatalf("SetKDF failed: %v", err)
	}
	scheme, iters, _ = db.GetKDF()
	if scheme != "pbkdf2" || iters != 100000 {
		t.Errorf("GetKDF = %q, %d; want pbkdf2, 100000", scheme, iters)
	}
}

func TestLastBatch(t *testing.T) {
	db, _ := openTestDB(t)
	defer db.Close()

	rec, err := db.LastBatch()
	if err != nil {
		t.Fatalf("LastBatch failed: %v", err)
	}
	if rec != nil {
		t.Errorf("LastBatch = %+v, want nil", rec)
	}

	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	if err := db.RecordBatch(BatchRecord{Direction: "seal", At: at, Files: 4}); err != nil {
		t.Fatalf("RecordBatch failed: %v", err)
	}
	rec, err = db.LastBatch()
	if err != nil {
		t.Fatalf("LastBatch failed: %v", err)
	}
	if rec.Direction != "seal" || rec.Files != 4 || !rec.At.Equal(at) {
		t.Errorf("LastBatch = %+v", rec)
	}
}

func TestPersistence(t *testing.T) {
	db, dbPath := openTestDB(t)

	id, err := db.GetOrCreateVaultID()
	if err != nil {
		t.Fatalf("GetOrCreateVaultID failed: %v", err)
	}
	if err := db.MarkUnsealed(time.Now()); err != nil {
		t.Fatalf("MarkUnsealed failed: %v", err)
	}
	db.Close()

	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	// Initialize again must not reset state.
	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	sealed, _ := db.IsSealed()
	if sealed {
		t.Error("Unsealed flag lost across reopen")
	}
	again, _ := db.GetOrCreateVaultID()
	if again != id {
		t.Errorf("vault ID changed: %s -> %s", id, again)
	}
}
