package kb_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zhouzirui/dinebot/backend/internal/model/kb"
)

const delhiJSON = `{
  "faq": [
    {"question": "What are your opening hours?", "answer": "12 PM to 11 PM."},
    {"question": "Where is the restaurant located?", "answer": "Connaught Place."}
  ],
  "booking": [
    {"info": "Booking Information", "details": "Call us to book."}
  ]
}`

func writeKB(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatalf("write kb: %v", err)
	}
}

func TestFileStoreLoadIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeKB(t, dir, "delhi_kb.json", delhiJSON)
	store := kb.NewFileStore(dir)

	c, err := store.Load(context.Background(), "Delhi")
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if len(c[kb.CategoryFAQ]) != 2 {
		t.Fatalf("expected 2 faq entries, got %d", len(c[kb.CategoryFAQ]))
	}
	if c[kb.CategoryBooking][0].Details != "Call us to book." {
		t.Fatalf("unexpected booking details %q", c[kb.CategoryBooking][0].Details)
	}
}

func TestFileStoreErrors(t *testing.T) {
	dir := t.TempDir()
	writeKB(t, dir, "broken_kb.json", "{not json")
	store := kb.NewFileStore(dir)
	ctx := context.Background()

	if _, err := store.Load(ctx, "Mumbai"); !errors.Is(err, kb.ErrCityNotFound) {
		t.Fatalf("expected ErrCityNotFound, got %v", err)
	}
	if _, err := store.Load(ctx, "broken"); !errors.Is(err, kb.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if _, err := store.Load(ctx, "../etc/passwd"); !errors.Is(err, kb.ErrCityNotFound) {
		t.Fatalf("expected traversal to be rejected, got %v", err)
	}
	if _, err := store.Load(ctx, "  "); !errors.Is(err, kb.ErrCityRequired) {
		t.Fatalf("expected ErrCityRequired, got %v", err)
	}
}

func TestLookupDistinguishesMissingIntent(t *testing.T) {
	dir := t.TempDir()
	writeKB(t, dir, "delhi_kb.json", delhiJSON)
	store := kb.NewFileStore(dir)
	ctx := context.Background()

	entries, err := kb.Lookup(ctx, store, "delhi", "faq")
	if err != nil || len(entries) != 2 {
		t.Fatalf("Lookup faq: entries=%d err=%v", len(entries), err)
	}
	if _, err := kb.Lookup(ctx, store, "delhi", "parking"); !errors.Is(err, kb.ErrIntentNotFound) {
		t.Fatalf("expected ErrIntentNotFound, got %v", err)
	}
	if _, err := kb.Lookup(ctx, store, "pune", "faq"); !errors.Is(err, kb.ErrCityNotFound) {
		t.Fatalf("expected ErrCityNotFound, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := kb.NewMemoryStore(map[string]kb.Collection{
		"Bangalore": {kb.CategoryFAQ: {{Question: "q", Answer: "a"}}},
	})
	c, err := store.Load(context.Background(), "BANGALORE")
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if c[kb.CategoryFAQ][0].Answer != "a" {
		t.Fatal("unexpected entry")
	}
}
