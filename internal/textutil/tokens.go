// Package textutil holds small text helpers used for conversation analytics.
package textutil

import (
	"regexp"
	"strings"
)

// DefaultChunkTokens is the chunk budget used when Chunk receives a non-positive limit.
const DefaultChunkTokens = 800

var tokenPattern = regexp.MustCompile(`\w+|[^\w\s]`)

// CountTokens returns the number of word and punctuation tokens in text.
func CountTokens(text string) int {
	return len(tokenPattern.FindAllStringIndex(text, -1))
}

// Chunk packs whitespace-separated words into chunks whose approximate token
// cost stays within maxTokens. A word costs len(word)/4+1 tokens.
func Chunk(text string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultChunkTokens
	}

	var (
		chunks  []string
		current []string
		used    int
	)
	for _, word := range strings.Fields(text) {
		cost := len(word)/4 + 1
		if used+cost <= maxTokens {
			current = append(current, word)
			used += cost
			continue
		}
		// an oversized first word gets a chunk of its own
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
		}
		current = []string{word}
		used = cost
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
