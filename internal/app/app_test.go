package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/zhouzirui/dinebot/backend/internal/config"
	"github.com/zhouzirui/dinebot/backend/internal/service/calllog"
)

func TestBuildLocalWithSQLiteLog(t *testing.T) {
	dir := t.TempDir()
	kbDir := filepath.Join(dir, "kb")
	if err := os.MkdirAll(kbDir, 0o755); err != nil {
		t.Fatal(err)
	}
	data := `{"faq":[{"question":"What are your opening hours?","answer":"Noon to 11 PM"}]}`
	if err := os.WriteFile(filepath.Join(kbDir, "delhi_kb.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	dbPath := filepath.Join(dir, "calls.db")
	cfg, err := config.LoadFrom(map[string]string{
		"KB_DIR":              kbDir,
		"KB_RANDOM_SEED":      "3",
		"CALLLOG_SQLITE_PATH": dbPath,
	})
	if err != nil {
		t.Fatalf("LoadFrom err: %v", err)
	}

	ctx := context.Background()
	a, err := Build(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Build err: %v", err)
	}
	defer a.Close()

	if !a.CallLog.Enabled() {
		t.Fatal("expected sqlite sink to enable the call log")
	}

	a.Chat.HandleMessage(ctx, "s1", "hi")
	reply, err := a.Chat.HandleMessage(ctx, "s1", "what are your opening hours in delhi")
	if err != nil {
		t.Fatalf("HandleMessage err: %v", err)
	}
	if reply.Response != "Noon to 11 PM" {
		t.Fatalf("unexpected reply %+v", reply)
	}

	if _, err := a.Chat.HandleMessage(ctx, "s1", "bye"); err != nil {
		t.Fatalf("HandleMessage err: %v", err)
	}

	sink, err := calllog.NewSQLiteSink(dbPath)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer sink.Close()
	rows, err := sink.Recent(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("Recent err: %v", err)
	}
	if len(rows) != 1 || rows[0].Intent != "goodbye" || rows[0].City != "Delhi" {
		t.Fatalf("unexpected logged rows %+v", rows)
	}
}

func TestBuildLLMRequiresCredentials(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{"KB_BACKEND": "llm"})
	if err != nil {
		t.Fatalf("LoadFrom err: %v", err)
	}
	if _, err := Build(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error without ark credentials")
	}
}

func TestBuildWithoutSinks(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{"KB_DIR": t.TempDir()})
	if err != nil {
		t.Fatalf("LoadFrom err: %v", err)
	}
	a, err := Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Build err: %v", err)
	}
	if a.CallLog.Enabled() {
		t.Fatal("call log should be disabled without sinks")
	}
}
