package cli

import (
	"context"
	"errors"
	"sort"

	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/aretw0/sideeye/pkg/ports"
)

// layeredLoader resolves items from the first loader that knows them.
// Inline items from a trial file shadow the configured catalogue.
type layeredLoader []ports.ItemLoader

func (l layeredLoader) GetItem(ctx context.Context, number string) (*domain.Item, error) {
	for _, loader := range l {
		item, err := loader.GetItem(ctx, number)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, domain.ErrItemNotFound) {
			return nil, err
		}
	}
	return nil, domain.ErrItemNotFound
}

func (l layeredLoader) ListItems(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var numbers []string
	for _, loader := range l {
		list, err := loader.ListItems(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range list {
			if !seen[n] {
				seen[n] = true
				numbers = append(numbers, n)
			}
		}
	}
	sort.Strings(numbers)
	return numbers, nil
}
