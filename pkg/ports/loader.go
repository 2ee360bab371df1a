package ports

import (
	"context"

	"github.com/aretw0/sideeye/pkg/domain"
)

// ItemLoader defines how the analyzer resolves the stimulus an input trial refers to.
// This allows the item source (Loam documents, memory) to be decoupled.
type ItemLoader interface {
	// GetItem returns the item with the given number.
	// Returns domain.ErrItemNotFound if it does not exist.
	GetItem(ctx context.Context, number string) (*domain.Item, error)

	// ListItems returns the numbers of all available items, sorted.
	ListItems(ctx context.Context) ([]string, error)
}
