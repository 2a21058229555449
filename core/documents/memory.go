package documents

import (
	"fmt"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory store keyed by normalized
// path.
type MemoryStore struct {
	mu         sync.RWMutex
	documents  map[string]string
	activePath string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{documents: map[string]string{}}
}

func (s *MemoryStore) Read(p string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.documents[NormalizePath(p)]
	if !ok {
		return "", fmt.Errorf("failed to read %q: %w", p, ErrNotFound)
	}
	return content, nil
}

func (s *MemoryStore) Modify(p, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents[NormalizePath(p)] = content
	return nil
}

func (s *MemoryStore) Append(p, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := NormalizePath(p)
	s.documents[normalized] += content
	return nil
}

func (s *MemoryStore) ActiveDocument() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.activePath == "" {
		return "", false
	}
	return s.activePath, true
}

// SetActive marks the document in focus. An empty path clears it.
func (s *MemoryStore) SetActive(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p == "" {
		s.activePath = ""
		return
	}
	s.activePath = NormalizePath(p)
}
