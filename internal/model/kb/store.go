package kb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrCityRequired   = errors.New("city is required")
	ErrCityNotFound   = errors.New("knowledge base not found")
	ErrMalformed      = errors.New("invalid knowledge base format")
	ErrIntentNotFound = errors.New("intent not found in knowledge base")
)

// Store loads a city's knowledge base. Implementations key cities case-insensitively.
type Store interface {
	Load(ctx context.Context, city string) (Collection, error)
}

// FileStore reads <dir>/<city>_kb.json on every call; there is no cache.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory the store reads from.
func (s *FileStore) Dir() string {
	return s.dir
}

// Load reads and decodes the city's file.
func (s *FileStore) Load(_ context.Context, city string) (Collection, error) {
	key, err := normalizeCity(city)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, key+"_kb.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
		}
		return nil, fmt.Errorf("read knowledge base %s: %w", key, err)
	}

	var collection Collection
	if err := json.Unmarshal(raw, &collection); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return collection, nil
}

// MemoryStore serves collections held in memory, mostly for tests and tools.
type MemoryStore struct {
	items map[string]Collection
}

// NewMemoryStore copies the supplied collections keyed by city.
func NewMemoryStore(items map[string]Collection) *MemoryStore {
	store := &MemoryStore{items: make(map[string]Collection, len(items))}
	for city, c := range items {
		store.items[strings.ToLower(strings.TrimSpace(city))] = c
	}
	return store
}

// Load returns the collection for city.
func (s *MemoryStore) Load(_ context.Context, city string) (Collection, error) {
	key, err := normalizeCity(city)
	if err != nil {
		return nil, err
	}
	c, ok := s.items[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}
	return c, nil
}

// Lookup returns the entries stored under intent for city.
func Lookup(ctx context.Context, store Store, city, intent string) ([]Entry, error) {
	collection, err := store.Load(ctx, city)
	if err != nil {
		return nil, err
	}
	entries, ok := collection[intent]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIntentNotFound, intent)
	}
	return entries, nil
}

func normalizeCity(city string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(city))
	if key == "" {
		return "", ErrCityRequired
	}
	// city names never contain path elements
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}
	return key, nil
}
