package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/sideeye/pkg/domain"
)

// Loader implements ports.ItemLoader using an in-memory map.
type Loader struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
}

// NewLoader creates a Loader holding the given items, keyed by their number.
func NewLoader(items ...*domain.Item) (*Loader, error) {
	l := &Loader{items: make(map[string]*domain.Item, len(items))}
	for _, it := range items {
		if err := l.Add(it); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add registers an item, replacing any item with the same number.
func (l *Loader) Add(item *domain.Item) error {
	if item == nil {
		return fmt.Errorf("item is nil")
	}
	if err := item.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items[item.Number] = item
	return nil
}

// GetItem retrieves an item by number.
func (l *Loader) GetItem(ctx context.Context, number string) (*domain.Item, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	item, ok := l.items[number]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, number)
	}
	return item, nil
}

// ListItems returns all available item numbers.
func (l *Loader) ListItems(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	numbers := make([]string, 0, len(l.items))
	for n := range l.items {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers) // Deterministic order
	return numbers, nil
}
