package status

import "sync"

// Pipeline stage values, overwritten in order during ingestion.
const (
	Idle       = "Idle"
	Reading    = "Reading file..."
	Chunking   = "Chunking text..."
	Embedding  = "Embedding & Storing in Vector DB..."
	Extracting = "Extracting entities..."
	Ingesting  = "Ingesting nodes into Graph DB..."
	GraphReady = "Graph Ready"
)

// FromError formats a background failure for status polling.
func FromError(err error) string {
	return "Error: " + err.Error()
}

// Store holds per-tenant ingestion progress. Each stage unconditionally
// overwrites the previous value, so per-key replace is all the
// synchronization needed; concurrent uploads from one tenant race and
// the last writer wins.
type Store struct {
	mu       sync.RWMutex
	statuses map[string]string
}

func NewStore() *Store {
	return &Store{statuses: make(map[string]string)}
}

// Get returns the tenant's current status, Idle if unseen.
func (s *Store) Get(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if status, ok := s.statuses[userID]; ok {
		return status
	}
	return Idle
}

func (s *Store) Set(userID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[userID] = status
}

// Reset returns the tenant to Idle.
func (s *Store) Reset(userID string) {
	s.Set(userID, Idle)
}
