package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractTrial(t *testing.T, index int) *domain.Trial {
	t.Helper()

	char := func(v int) *int { return &v }
	item := &domain.Item{
		Number:    "contract",
		Condition: "a",
		Regions: []domain.Region{
			{Number: 0, Start: domain.NewPoint(0, 0), End: domain.NewPoint(10, 0)},
			{Number: 1, Start: domain.NewPoint(10, 0), End: domain.NewPoint(30, 0)},
		},
	}
	fixations := []domain.Fixation{
		domain.NewFixation(domain.NewPoint(2, 0), 0, 200, &item.Regions[0]),
		{Start: 210, End: 230, Duration: 20, Excluded: true},
		domain.NewFixation(domain.NewPoint(14, 0), 260, 480, &item.Regions[1]),
		{Start: 500, End: 620, Duration: 120, Char: char(1)}, // line unknown
	}
	total := 700

	trial, err := domain.NewTrial(index, &total, item, fixations,
		domain.WithIncludeFixation(true), domain.WithIncludeSaccades(true))
	require.NoError(t, err)
	trial.TrialMeasures["total_time"] = domain.MeasureResult{Value: 700, Calculated: true}
	trial.RegionMeasures.Set("1", "first_fixation", domain.MeasureResult{Value: 220, Calculated: true})
	return trial
}

// RunTrialStoreContract runs a suite of tests to verify that a TrialStore implementation
// adheres to the defined interface contract.
func RunTrialStoreContract(t *testing.T, store TrialStore) {
	ctx := context.Background()
	key := "contract-test-trial-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		trial := contractTrial(t, 0)

		err := store.Save(ctx, key, trial)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.True(t, trial.Equal(loaded), "loaded trial should equal saved trial:\nwant %v\ngot  %v", trial, loaded)
		require.Len(t, loaded.Saccades, len(trial.Saccades))
		for i, f := range loaded.Fixations {
			assert.Equal(t, i, f.Index)
		}
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, contractTrial(t, 0)))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		loaded.TrialMeasures["mutated"] = domain.MeasureResult{Calculated: true}

		again, err := store.Load(ctx, key)
		require.NoError(t, err)
		_, ok := again.TrialMeasures["mutated"]
		assert.False(t, ok, "mutating a loaded trial must not change the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrTrialNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, key, contractTrial(t, 0))
		require.NoError(t, err)

		err = store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrTrialNotFound, "Load after Delete should return ErrTrialNotFound")

		assert.NoError(t, store.Delete(ctx, key), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		_ = store.Save(ctx, id1, contractTrial(t, 1))
		_ = store.Save(ctx, id2, contractTrial(t, 2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})
}
