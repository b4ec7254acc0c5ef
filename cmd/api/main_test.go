package main

import (
	"net"
	"os"
	"path/filepath"
	"testing"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "calls.db")
	t.Setenv("KB_BACKEND", "local")
	t.Setenv("KB_DIR", t.TempDir())
	t.Setenv("GOOGLE_SHEETS_ID", "")
	t.Setenv("CALLLOG_SQLITE_PATH", dbPath)
	t.Setenv("LOG_LEVEL", "error")
	return dbPath
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("KB_BACKEND", "oracle")

	if code := run(); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunClosesCallLogWhenServerFails(t *testing.T) {
	dbPath := setupEnv(t)

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()
	t.Setenv("PORT", busy.Addr().String())

	if code := run(); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected call log database to exist: %v", err)
	}
	// the write-ahead log is removed only when the last connection closes
	if _, err := os.Stat(dbPath + "-wal"); !os.IsNotExist(err) {
		t.Fatalf("expected call log database to be closed, wal stat err=%v", err)
	}
}
