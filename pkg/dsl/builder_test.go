package dsl

import (
	"context"
	"testing"

	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Catalogue(t *testing.T) {
	b := New()

	b.Add("1").
		Condition("a").
		Region("pre", domain.NewPoint(0, 0), domain.NewPoint(10, 0)).Text("The horse").
		Region("critical", domain.NewPoint(10, 0), domain.NewPoint(0, 1))

	b.Add("2").Condition("b")

	// Add returns the existing builder for a known number.
	b.Add("1").Condition("a2")

	loader, err := b.Build()
	require.NoError(t, err)

	numbers, err := loader.ListItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, numbers)

	item, err := loader.GetItem(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "a2", item.Condition)
	assert.Equal(t, []string{"pre", "critical"}, item.Labels)
	require.Len(t, item.Regions, 2)
	assert.Equal(t, 1, item.Regions[0].Number)
	assert.Equal(t, "The horse", item.Regions[0].Text)
	assert.Equal(t, 2, item.Regions[1].Number)
	assert.Equal(t, domain.NewPoint(0, 1), item.Regions[1].End)
}

func TestBuilder_RejectsInvalidItem(t *testing.T) {
	b := New()
	b.Add("1").Region("backwards", domain.NewPoint(5, 1), domain.NewPoint(0, 0))

	_, err := b.Build()
	assert.Error(t, err)
}

func TestBuilder_ItemIsCopy(t *testing.T) {
	b := New()
	b.Add("1").Region("r", domain.NewPoint(0, 0), domain.NewPoint(1, 0))

	item := b.Item("1")
	item.Regions[0].Label = "changed"
	assert.Equal(t, "r", b.Item("1").Regions[0].Label)
	assert.Nil(t, b.Item("missing"))
}

func TestSequence_Trial(t *testing.T) {
	item := New().Add("1").Build()

	trial, err := Fixations().
		At(2, 0, 0, 180).
		At(12, 0, 210, 400).
		Off(430, 500).Exclude().
		At(4, 0, 520, 700).
		Trial(0, item, domain.WithIncludeSaccades(true))
	require.NoError(t, err)

	require.Len(t, trial.Fixations, 4)
	assert.False(t, trial.Fixations[2].Localized())
	assert.Equal(t, 3, trial.FixationCount())

	require.Len(t, trial.Saccades, 2)
	assert.Equal(t, domain.NewSaccade(30, false, 0, 1), trial.Saccades[0])
	// 30ms before the excluded fixation plus 20ms after it.
	assert.Equal(t, domain.NewSaccade(50, true, 1, 3), trial.Saccades[1])
}

func TestSequence_Modifiers(t *testing.T) {
	s := Fixations().Exclude().Duration(5) // no-ops on an empty sequence
	assert.Empty(t, s.List())

	list := s.At(0, 0, 0, 100).Duration(90).List()
	require.Len(t, list, 1)
	assert.Equal(t, 90, list[0].Duration)

	list[0].Start = 999
	assert.Equal(t, 0, s.List()[0].Start)
}
