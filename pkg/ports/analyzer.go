package ports

import (
	"context"

	"github.com/aretw0/sideeye/pkg/domain"
)

// BuildRequest carries the input of one trial: which item was read, the raw fixation sequence
// and how excluded fixations are folded into saccades.
type BuildRequest struct {
	// Key overrides the storage key. Defaults to domain.TrialKey(item number, index).
	Key string

	Index int
	Time  *int

	// Item is used as-is when set; otherwise ItemNumber is resolved through the ItemLoader.
	Item       *domain.Item
	ItemNumber string

	Fixations []domain.Fixation

	// Options overrides the analyzer's configured build options when set.
	Options *domain.BuildOptions
}

// Analyzer is the surface used by the driving adapters (HTTP, MCP, CLI).
type Analyzer interface {
	// Build constructs a trial from the request and persists it.
	Build(ctx context.Context, req BuildRequest) (*domain.Trial, error)

	// Measure re-runs the registered measures on a stored trial and saves the result.
	Measure(ctx context.Context, key string) (*domain.Trial, error)

	// Trial loads a stored trial.
	Trial(ctx context.Context, key string) (*domain.Trial, error)

	// Trials lists the keys of stored trials.
	Trials(ctx context.Context) ([]string, error)

	// DeleteTrial removes a stored trial.
	DeleteTrial(ctx context.Context, key string) error

	// Items lists the available item numbers.
	Items(ctx context.Context) ([]string, error)

	// Item resolves one item.
	Item(ctx context.Context, number string) (*domain.Item, error)
}
