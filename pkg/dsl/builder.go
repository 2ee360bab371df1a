package dsl

import (
	"fmt"

	"github.com/aretw0/sideeye/pkg/adapters/memory"
	"github.com/aretw0/sideeye/pkg/domain"
)

// Builder manages the item catalogue construction.
type Builder struct {
	items map[string]*ItemBuilder
	order []string
}

// New creates a new catalogue builder.
func New() *Builder {
	return &Builder{
		items: make(map[string]*ItemBuilder),
	}
}

// Add creates a new item in the catalogue.
// If the item already exists, it returns the existing builder.
func (b *Builder) Add(number string) *ItemBuilder {
	if ib, ok := b.items[number]; ok {
		return ib
	}
	ib := &ItemBuilder{
		item: domain.Item{Number: number},
	}
	b.items[number] = ib
	b.order = append(b.order, number)
	return ib
}

// Item returns the item built so far, or nil if number was never added.
func (b *Builder) Item(number string) *domain.Item {
	ib, ok := b.items[number]
	if !ok {
		return nil
	}
	return ib.Build()
}

// Build compiles the catalogue into a memory Loader.
func (b *Builder) Build() (*memory.Loader, error) {
	items := make([]*domain.Item, 0, len(b.order))
	for _, number := range b.order {
		items = append(items, b.items[number].Build())
	}

	loader, err := memory.NewLoader(items...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}

	return loader, nil
}
