package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/aretw0/sideeye/pkg/ports"
)

// ItemLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.ItemLoader.
func ItemLoaderContractTest(t *testing.T, loader ports.ItemLoader, expected map[string]*domain.Item) {
	t.Helper()
	ctx := context.Background()

	// 1. Test GetItem (Success)
	t.Run("GetItem_Success", func(t *testing.T) {
		for number, want := range expected {
			got, err := loader.GetItem(ctx, number)
			if err != nil {
				t.Fatalf("unexpected error getting item %s: %v", number, err)
			}
			if !got.Equal(want) {
				t.Errorf("item mismatch for %s. got %v, want %v", number, got, want)
			}
		}
	})

	// 2. Test GetItem (NotFound)
	t.Run("GetItem_NotFound", func(t *testing.T) {
		_, err := loader.GetItem(ctx, "non-existent-item")
		if !errors.Is(err, domain.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound for non-existent item, got %v", err)
		}
	})

	// 3. Test ListItems
	t.Run("ListItems", func(t *testing.T) {
		numbers, err := loader.ListItems(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing items: %v", err)
		}

		if len(numbers) != len(expected) {
			t.Errorf("expected %d items, got %d", len(expected), len(numbers))
		}

		lookup := make(map[string]bool)
		for _, n := range numbers {
			lookup[n] = true
		}

		for n := range expected {
			if !lookup[n] {
				t.Errorf("item %s missing from list", n)
			}
		}
	})
}
