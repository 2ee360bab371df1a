package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/sideeye/pkg/domain"
)

// Loader adapts a Loam repository of item documents to the ItemLoader port.
//
// Each document describes one item: its frontmatter carries the number, condition,
// labels and regions, and its body is the item text.
type Loader struct {
	Repo *loam.TypedRepository[ItemMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[ItemMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initialises a read-only Loam repository at path and wraps it in a Loader.
func Open(path string) (*Loader, error) {
	repo, err := loam.Init(path, loam.WithStrict(true), loam.WithReadOnly(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open item repository %s: %w", path, err)
	}
	return New(loam.NewTypedRepository[ItemMetadata](repo)), nil
}

// GetItem resolves an item by number.
func (l *Loader) GetItem(ctx context.Context, number string) (*domain.Item, error) {
	items, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	item, ok := items[number]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, number)
	}
	return item, nil
}

// ListItems returns the sorted item numbers found in the repository.
func (l *Loader) ListItems(ctx context.Context) ([]string, error) {
	items, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	numbers := make([]string, 0, len(items))
	for n := range items {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)
	return numbers, nil
}

// load reads every document and indexes the items by number.
// Numbers come from the frontmatter when present, otherwise from the document name,
// so lookups are resolved here rather than by document id.
func (l *Loader) load(ctx context.Context) (map[string]*domain.Item, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	items := make(map[string]*domain.Item, len(docs))
	seen := make(map[string]string, len(docs))

	for _, doc := range docs {
		number := doc.Data.Number
		if number == "" {
			number = trimExtension(doc.ID)
		}

		if existing, ok := seen[number]; ok {
			return nil, fmt.Errorf("collision detected: item '%s' is defined in both '%s' and '%s'", number, existing, doc.ID)
		}
		seen[number] = doc.ID

		item := doc.Data.toDomain(number)
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("invalid item document %s: %w", doc.ID, err)
		}
		items[number] = item
	}
	return items, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
