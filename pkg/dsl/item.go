package dsl

import (
	"slices"

	"github.com/aretw0/sideeye/pkg/domain"
)

// ItemBuilder provides a fluent API for configuring an item.
type ItemBuilder struct {
	item domain.Item
}

// Condition sets the experimental condition of the item.
func (i *ItemBuilder) Condition(condition string) *ItemBuilder {
	i.item.Condition = condition
	return i
}

// Region appends a region. Regions are numbered from 1 in the order they are added,
// and the label is also recorded in the item's label list.
func (i *ItemBuilder) Region(label string, start, end domain.Point) *ItemBuilder {
	i.item.Regions = append(i.item.Regions, domain.Region{
		Number: len(i.item.Regions) + 1,
		Label:  label,
		Start:  start,
		End:    end,
	})
	if label != "" {
		i.item.Labels = append(i.item.Labels, label)
	}
	return i
}

// Text sets the text of the most recently added region.
func (i *ItemBuilder) Text(text string) *ItemBuilder {
	if n := len(i.item.Regions); n > 0 {
		i.item.Regions[n-1].Text = text
	}
	return i
}

// Build returns a copy of the underlying domain.Item.
func (i *ItemBuilder) Build() *domain.Item {
	item := i.item
	item.Regions = slices.Clone(i.item.Regions)
	item.Labels = slices.Clone(i.item.Labels)
	return &item
}
