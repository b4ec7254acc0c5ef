package textutil

import (
	"strings"
	"testing"
)

func TestCountTokensSplitsPunctuation(t *testing.T) {
	got := CountTokens("What are your opening hours?")
	if got != 6 {
		t.Fatalf("expected 6 tokens, got %d", got)
	}
	if CountTokens("   ") != 0 {
		t.Fatal("expected zero tokens for blank text")
	}
}

func TestChunkRespectsBudget(t *testing.T) {
	text := strings.Repeat("abcd ", 10) // each word costs 2
	chunks := Chunk(text, 6)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "abcd abcd abcd" {
		t.Fatalf("unexpected first chunk %q", chunks[0])
	}
	if chunks[3] != "abcd" {
		t.Fatalf("unexpected last chunk %q", chunks[3])
	}
}

func TestChunkOversizedWordDoesNotEmitEmptyChunk(t *testing.T) {
	chunks := Chunk("supercalifragilistic tiny", 2)
	for _, c := range chunks {
		if c == "" {
			t.Fatalf("unexpected empty chunk in %v", chunks)
		}
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %v", chunks)
	}
}

func TestChunkDefaultBudget(t *testing.T) {
	if got := Chunk("one two three", 0); len(got) != 1 {
		t.Fatalf("expected single chunk with default budget, got %v", got)
	}
	if got := Chunk("", 10); len(got) != 0 {
		t.Fatalf("expected no chunks for empty text, got %v", got)
	}
}
