package ports

import (
	"context"

	"github.com/aretw0/sideeye/pkg/domain"
)

// TrialStore defines the interface for persisting constructed trials.
// Stored trials keep their derived saccades and measures, so a reload is equal to the original.
type TrialStore interface {
	// Save persists the trial under the given key, replacing any previous value.
	Save(ctx context.Context, key string, trial *domain.Trial) error

	// Load retrieves the trial stored under key.
	// Returns domain.ErrTrialNotFound if the key does not exist.
	Load(ctx context.Context, key string) (*domain.Trial, error)

	// Delete removes the trial stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all stored trials.
	List(ctx context.Context) ([]string, error)
}
