package store

import (
	"context"
	"strings"
	"sync"

	"github.com/forkandfind/client/internal/domain"
)

// MemoryStore is a PreferenceStore that lives as long as the process
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ domain.PreferenceStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory preference store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get returns the value stored under key
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return "", domain.ErrPreferenceNotFound
	}
	return value, nil
}

// Set stores value under key
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

// Clear removes key. Clearing a missing key is not an error.
func (s *MemoryStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// prefixStore scopes every key of an underlying store under a prefix
type prefixStore struct {
	prefix string
	next   domain.PreferenceStore
}

// WithPrefix returns a store whose keys live under prefix in next. The HTTP
// view uses it to give each browser session its own preferences.
func WithPrefix(next domain.PreferenceStore, prefix string) domain.PreferenceStore {
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &prefixStore{prefix: prefix, next: next}
}

func (p *prefixStore) Get(ctx context.Context, key string) (string, error) {
	return p.next.Get(ctx, p.prefix+key)
}

func (p *prefixStore) Set(ctx context.Context, key, value string) error {
	return p.next.Set(ctx, p.prefix+key, value)
}

func (p *prefixStore) Clear(ctx context.Context, key string) error {
	return p.next.Clear(ctx, p.prefix+key)
}
