package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/sideeye/pkg/domain"
)

// Store implements ports.TrialStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Trial
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Trial),
	}
}

// Save persists the trial in memory.
func (s *Store) Save(ctx context.Context, key string, trial *domain.Trial) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := trial.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Load retrieves the trial from memory.
func (s *Store) Load(ctx context.Context, key string) (*domain.Trial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trial, ok := s.data[key]
	if !ok {
		return nil, domain.ErrTrialNotFound
	}

	// Create a copy on read so caller can't mutate store state directly by pointer
	return trial.Snapshot(), nil
}

// Delete removes the trial.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored keys, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
