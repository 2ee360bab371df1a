package registry_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/aretw0/sideeye/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrial(t *testing.T) *domain.Trial {
	t.Helper()
	item := &domain.Item{
		Number: "1",
		Regions: []domain.Region{
			{Number: 1, Start: domain.NewPoint(0, 0), End: domain.NewPoint(10, 0)},
			{Number: 2, Start: domain.NewPoint(10, 0), End: domain.NewPoint(20, 0)},
		},
	}
	trial, err := domain.NewTrial(0, nil, item, []domain.Fixation{
		domain.NewFixation(domain.NewPoint(2, 0), 0, 200, nil),
		domain.NewFixation(domain.NewPoint(12, 0), 230, 430, nil),
		domain.NewFixation(domain.NewPoint(4, 0), 450, 600, nil),
	})
	require.NoError(t, err)
	return trial
}

func TestRegistry_Apply(t *testing.T) {
	reg := registry.NewRegistry()
	reg.RegisterTrial("regression_count", func(_ context.Context, tr *domain.Trial) (float64, bool, error) {
		return float64(tr.Regressions()), true, nil
	})
	reg.RegisterRegion("fixation_count", func(_ context.Context, tr *domain.Trial, r domain.Region) (float64, bool, error) {
		n := 0
		for _, f := range tr.Fixations {
			if p, ok := f.Position(); ok && r.Contains(p) {
				n++
			}
		}
		return float64(n), n > 0, nil
	})

	trial := newTrial(t)
	require.NoError(t, reg.Apply(context.Background(), trial))

	assert.Equal(t, domain.MeasureResult{Value: 1, Calculated: true}, trial.TrialMeasures["regression_count"])

	got, ok := trial.RegionMeasures.Get("1", "fixation_count")
	require.True(t, ok)
	assert.Equal(t, 2.0, got.Value)

	got, ok = trial.RegionMeasures.Get("2", "fixation_count")
	require.True(t, ok)
	assert.Equal(t, 1.0, got.Value)
}

func TestRegistry_NotCalculated(t *testing.T) {
	reg := registry.NewRegistry()
	reg.RegisterTrial("empty", func(context.Context, *domain.Trial) (float64, bool, error) {
		return 42, false, nil
	})

	trial := newTrial(t)
	require.NoError(t, reg.Apply(context.Background(), trial))
	assert.Equal(t, domain.MeasureResult{}, trial.TrialMeasures["empty"])
}

func TestRegistry_NonFiniteIsNotCalculated(t *testing.T) {
	reg := registry.NewRegistry()
	reg.RegisterTrial("inf", func(context.Context, *domain.Trial) (float64, bool, error) {
		return math.Inf(1), true, nil
	})
	reg.RegisterRegion("nan", func(context.Context, *domain.Trial, domain.Region) (float64, bool, error) {
		return math.NaN(), true, nil
	})

	trial := newTrial(t)
	require.NoError(t, reg.Apply(context.Background(), trial))
	assert.Equal(t, domain.MeasureResult{}, trial.TrialMeasures["inf"])
	got, ok := trial.RegionMeasures.Get("1", "nan")
	require.True(t, ok)
	assert.Equal(t, domain.MeasureResult{}, got)

	_, err := json.Marshal(trial)
	assert.NoError(t, err)
}

func TestRegistry_ErrorAborts(t *testing.T) {
	reg := registry.NewRegistry()
	boom := errors.New("boom")
	reg.RegisterTrial("bad", func(context.Context, *domain.Trial) (float64, bool, error) {
		return 0, false, boom
	})

	err := reg.Apply(context.Background(), newTrial(t))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "measure bad")
}

func TestRegistry_OverwriteAndNames(t *testing.T) {
	reg := registry.NewRegistry()
	one := func(context.Context, *domain.Trial) (float64, bool, error) { return 1, true, nil }
	two := func(context.Context, *domain.Trial) (float64, bool, error) { return 2, true, nil }

	reg.RegisterTrial("b", one)
	reg.RegisterTrial("a", one)
	reg.RegisterTrial("a", two)

	trialNames, regionNames := reg.Names()
	assert.Equal(t, []string{"a", "b"}, trialNames)
	assert.Empty(t, regionNames)
	assert.Equal(t, 2, reg.Len())

	trial := newTrial(t)
	require.NoError(t, reg.Apply(context.Background(), trial))
	assert.Equal(t, 2.0, trial.TrialMeasures["a"].Value)
}
