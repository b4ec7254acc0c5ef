package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupKB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	data := `{
  "faq": [
    {"question": "What are your opening hours?", "answer": "12 PM to 11 PM"},
    {"question": "Where are you located?", "answer": "Connaught Place"}
  ],
  "booking": [{"info": "Booking Information", "details": "Call us to book."}]
}`
	if err := os.WriteFile(filepath.Join(dir, "delhi_kb.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KB_BACKEND", "local")
	t.Setenv("GOOGLE_SHEETS_ID", "")
	t.Setenv("CALLLOG_SQLITE_PATH", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLookupCommand(t *testing.T) {
	dir := setupKB(t)

	out, err := run(t, "", "lookup", "--kb-dir", dir, "--city", "Delhi")
	if err != nil {
		t.Fatalf("lookup err: %v", err)
	}
	if !strings.Contains(out, "Connaught Place") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, "", "lookup", "--kb-dir", dir, "--city", "Pune"); err == nil {
		t.Fatal("expected error for unknown city")
	}
}

func TestAskCommand(t *testing.T) {
	dir := setupKB(t)

	out, err := run(t, "", "ask", "--kb-dir", dir, "--city", "Delhi", "--intent", "faq", "what", "are", "your", "opening", "hours")
	if err != nil {
		t.Fatalf("ask err: %v", err)
	}
	if strings.TrimSpace(out) != "12 PM to 11 PM" {
		t.Fatalf("unexpected answer %q", out)
	}

	out, err = run(t, "", "ask", "--kb-dir", dir, "--city", "Delhi", "--intent", "faq", "zzz")
	if err != nil {
		t.Fatalf("ask err: %v", err)
	}
	if strings.TrimSpace(out) != "(no answer)" {
		t.Fatalf("expected no answer, got %q", out)
	}
}

func TestChatCommand(t *testing.T) {
	dir := setupKB(t)

	out, err := run(t, "hello\ndelhi location, where are you?\nbye\nignored\n", "chat", "--kb-dir", dir, "--seed", "1")
	if err != nil {
		t.Fatalf("chat err: %v", err)
	}

	for _, want := range []string{"Welcome", "bot [faq]: Connaught Place", "bot [goodbye]:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("chat output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ignored") || strings.Count(out, "bot [") != 3 {
		t.Fatalf("chat should stop at goodbye:\n%s", out)
	}
}
