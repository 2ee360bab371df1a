package domain_test

import (
	"errors"
	"testing"

	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func testItem() *domain.Item {
	return &domain.Item{
		Number:    "1",
		Condition: "1",
		Regions: []domain.Region{
			{Number: 0, Start: domain.NewPoint(0, 1), End: domain.NewPoint(10, 1)},
			{Number: 1, Start: domain.NewPoint(10, 1), End: domain.NewPoint(20, 1)},
		},
	}
}

func fix(char, line, start, end int) domain.Fixation {
	return domain.NewFixation(domain.NewPoint(char, line), start, end, nil)
}

func excluded(start, end int) domain.Fixation {
	return domain.Fixation{Start: start, End: end, Duration: end - start, Excluded: true}
}

func TestNewTrial_Validation(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		time    *int
		item    *domain.Item
		wantMsg string
	}{
		{"negative index", -1, nil, testItem(), "index must be non-negative"},
		{"missing item", 0, nil, nil, "trial must have an associated item"},
		{"negative time", 0, intp(-5), testItem(), "time must be non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trial, err := domain.NewTrial(tt.index, tt.time, tt.item, nil)
			require.Error(t, err)
			assert.Nil(t, trial)
			assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	t.Run("zero values are valid", func(t *testing.T) {
		trial, err := domain.NewTrial(0, intp(0), testItem(), nil)
		require.NoError(t, err)
		assert.Empty(t, trial.Fixations)
		assert.Empty(t, trial.Saccades)
		assert.NotNil(t, trial.TrialMeasures)
		assert.NotNil(t, trial.RegionMeasures)
	})
}

func TestNewTrial_SimpleProgression(t *testing.T) {
	fixations := []domain.Fixation{
		fix(1, 1, 0, 100),
		fix(5, 1, 150, 250),
	}

	trial, err := domain.NewTrial(0, intp(300), testItem(), fixations)
	require.NoError(t, err)

	require.Len(t, trial.Saccades, 1)
	s := trial.Saccades[0]
	assert.Equal(t, 50, s.Duration)
	assert.False(t, s.Regression)

	start, end := trial.Endpoints(s)
	assert.Equal(t, 0, start.Index)
	assert.Equal(t, 1, end.Index)
}

func TestNewTrial_RegressionAcrossLines(t *testing.T) {
	fixations := []domain.Fixation{
		fix(2, 2, 0, 100),
		fix(30, 1, 120, 200), // later char, earlier line
	}

	trial, err := domain.NewTrial(0, nil, testItem(), fixations)
	require.NoError(t, err)
	require.Len(t, trial.Saccades, 1)
	assert.True(t, trial.Saccades[0].Regression)
	assert.Equal(t, 1, trial.Regressions())
}

func TestNewTrial_ExcludedFixations(t *testing.T) {
	fixations := []domain.Fixation{
		fix(1, 1, 0, 100),
		excluded(100, 120),
		fix(0, 1, 170, 300),
	}

	tests := []struct {
		name         string
		opts         []domain.TrialOption
		wantSaccades int
		wantDuration int
	}{
		{
			name:         "include fixation and saccades",
			opts:         []domain.TrialOption{domain.WithIncludeFixation(true), domain.WithIncludeSaccades(true)},
			wantSaccades: 1,
			wantDuration: 0 + 20 + 50,
		},
		{
			name:         "include fixation only",
			opts:         []domain.TrialOption{domain.WithIncludeFixation(true)},
			wantSaccades: 1,
			wantDuration: 20,
		},
		{
			name:         "include saccades only",
			opts:         []domain.TrialOption{domain.WithIncludeSaccades(true)},
			wantSaccades: 1,
			wantDuration: 0 + 50,
		},
		{
			// Nothing accumulates across the excluded run, so no saccade is emitted.
			name:         "defaults",
			wantSaccades: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trial, err := domain.NewTrial(0, nil, testItem(), fixations, tt.opts...)
			require.NoError(t, err)
			require.Len(t, trial.Saccades, tt.wantSaccades)
			if tt.wantSaccades == 0 {
				return
			}
			s := trial.Saccades[0]
			assert.Equal(t, tt.wantDuration, s.Duration)
			assert.True(t, s.Regression, "char 0 precedes char 1 on the same line")
			assert.Equal(t, 0, s.Start)
			assert.Equal(t, 2, s.End)
		})
	}
}

func TestNewTrial_ExcludedRunIsBridgedOnce(t *testing.T) {
	fixations := []domain.Fixation{
		fix(1, 1, 0, 100),
		excluded(110, 130),
		excluded(140, 150),
		excluded(160, 170),
		fix(9, 1, 200, 260),
	}

	trial, err := domain.NewTrial(0, nil, testItem(), fixations,
		domain.WithIncludeFixation(true), domain.WithIncludeSaccades(true))
	require.NoError(t, err)

	require.Len(t, trial.Saccades, 1)
	// gaps: 10 + 10 + 10 + 30, fixations: 20 + 10 + 10
	assert.Equal(t, 100, trial.Saccades[0].Duration)
	assert.False(t, trial.Saccades[0].Regression)
	assert.Equal(t, 2, trial.FixationCount())
}

func TestNewTrial_UnknownPositions(t *testing.T) {
	unlocalized := func(start, end int) domain.Fixation {
		return domain.Fixation{Start: start, End: end, Duration: end - start}
	}

	t.Run("unknown destination is a regression", func(t *testing.T) {
		// Origin at the very start of the text: no known point precedes it.
		fixations := []domain.Fixation{fix(0, 0, 0, 100), unlocalized(150, 250)}
		trial, err := domain.NewTrial(0, nil, testItem(), fixations)
		require.NoError(t, err)
		require.Len(t, trial.Saccades, 1)
		assert.True(t, trial.Saccades[0].Regression)
	})

	t.Run("unknown destination with only line missing", func(t *testing.T) {
		dest := domain.Fixation{Start: 150, End: 250, Duration: 100, Char: intp(50)}
		trial, err := domain.NewTrial(0, nil, testItem(), []domain.Fixation{fix(0, 0, 0, 100), dest})
		require.NoError(t, err)
		require.Len(t, trial.Saccades, 1)
		assert.True(t, trial.Saccades[0].Regression)
	})

	t.Run("unknown origin is a progression", func(t *testing.T) {
		fixations := []domain.Fixation{unlocalized(0, 100), fix(0, 0, 150, 250)}
		trial, err := domain.NewTrial(0, nil, testItem(), fixations)
		require.NoError(t, err)
		require.Len(t, trial.Saccades, 1)
		assert.False(t, trial.Saccades[0].Regression)
	})

	t.Run("both unknown is a regression", func(t *testing.T) {
		fixations := []domain.Fixation{unlocalized(0, 100), unlocalized(150, 250)}
		trial, err := domain.NewTrial(0, nil, testItem(), fixations)
		require.NoError(t, err)
		require.Len(t, trial.Saccades, 1)
		assert.True(t, trial.Saccades[0].Regression)
	})
}

func TestNewTrial_NonPositiveGapsAreDropped(t *testing.T) {
	fixations := []domain.Fixation{
		fix(1, 1, 0, 100),
		fix(2, 1, 100, 200), // touching: zero gap
		fix(3, 1, 180, 300), // overlapping: negative gap
		fix(4, 1, 320, 400),
	}

	trial, err := domain.NewTrial(0, nil, testItem(), fixations)
	require.NoError(t, err)

	require.Len(t, trial.Saccades, 1)
	assert.Equal(t, 2, trial.Saccades[0].Start)
	assert.Equal(t, 3, trial.Saccades[0].End)
	assert.Equal(t, 20, trial.Saccades[0].Duration)
}

func TestNewTrial_NoGapBeforeFirstFixation(t *testing.T) {
	// The last fixation ends long before the first one starts; the first fixation must not
	// pick up a gap from it.
	fixations := []domain.Fixation{
		fix(1, 1, 500, 600),
		fix(2, 1, 650, 700),
		fix(3, 1, 0, 10),
	}

	trial, err := domain.NewTrial(0, nil, testItem(), fixations)
	require.NoError(t, err)
	require.Len(t, trial.Saccades, 1)
	assert.Equal(t, 0, trial.Saccades[0].Start)
	assert.Equal(t, 50, trial.Saccades[0].Duration)
}

func TestNewTrial_LeadingExcludedFixations(t *testing.T) {
	fixations := []domain.Fixation{
		excluded(0, 50),
		excluded(60, 80),
		fix(1, 1, 100, 200),
		fix(4, 1, 230, 300),
	}

	trial, err := domain.NewTrial(0, nil, testItem(), fixations,
		domain.WithIncludeFixation(true), domain.WithIncludeSaccades(true))
	require.NoError(t, err)

	require.Len(t, trial.Saccades, 1)
	assert.Equal(t, 2, trial.Saccades[0].Start)
	assert.Equal(t, 3, trial.Saccades[0].End)
	assert.Equal(t, 30, trial.Saccades[0].Duration)
}

func TestNewTrial_Reindexing(t *testing.T) {
	fixations := []domain.Fixation{
		fix(1, 1, 0, 100),
		excluded(100, 120),
		fix(3, 1, 150, 200),
		fix(2, 1, 250, 300),
	}
	for i := range fixations {
		fixations[i].Index = 42 + i
	}

	trial, err := domain.NewTrial(3, nil, testItem(), fixations)
	require.NoError(t, err)

	for i, f := range trial.Fixations {
		assert.Equal(t, i, f.Index)
	}
	// The caller's slice is not touched.
	assert.Equal(t, 42, fixations[0].Index)
}

func TestNewTrial_OwnsFixations(t *testing.T) {
	fixations := []domain.Fixation{fix(1, 1, 0, 100), fix(5, 1, 150, 250)}

	trial, err := domain.NewTrial(0, nil, testItem(), fixations)
	require.NoError(t, err)

	*fixations[1].Char = 0
	fixations[1].Excluded = true

	got, ok := trial.Fixations[1].Position()
	require.True(t, ok)
	assert.Equal(t, domain.NewPoint(5, 1), got)
	assert.False(t, trial.Fixations[1].Excluded)
}

func TestNewTrial_SaccadeBound(t *testing.T) {
	inputs := [][]domain.Fixation{
		nil,
		{fix(1, 1, 0, 100)},
		{excluded(0, 10)},
		{fix(1, 1, 0, 100), fix(2, 1, 110, 200), fix(3, 1, 210, 300)},
		{excluded(0, 10), fix(1, 1, 20, 100), excluded(110, 120), fix(2, 1, 130, 200)},
	}

	for _, fixations := range inputs {
		trial, err := domain.NewTrial(0, nil, testItem(), fixations,
			domain.WithIncludeFixation(true), domain.WithIncludeSaccades(true))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(trial.Saccades), max(0, len(trial.Fixations)-1))
		for _, s := range trial.Saccades {
			assert.Less(t, s.Start, s.End)
			assert.False(t, trial.Fixations[s.Start].Excluded)
			assert.False(t, trial.Fixations[s.End].Excluded)
		}
	}
}

func TestTrial_FixationCount(t *testing.T) {
	fixations := []domain.Fixation{
		fix(1, 1, 0, 100),
		excluded(100, 120),
		excluded(130, 140),
		fix(2, 1, 150, 200),
	}
	trial, err := domain.NewTrial(0, nil, testItem(), fixations)
	require.NoError(t, err)
	assert.Equal(t, 2, trial.FixationCount())
	assert.Len(t, trial.Fixations, 4)
}

func TestTrial_Equal(t *testing.T) {
	build := func() *domain.Trial {
		fixations := []domain.Fixation{
			fix(1, 1, 0, 100),
			excluded(100, 120),
			fix(0, 1, 170, 300),
		}
		trial, err := domain.NewTrial(2, intp(400), testItem(), fixations,
			domain.WithIncludeFixation(true), domain.WithIncludeSaccades(true))
		require.NoError(t, err)
		return trial
	}

	a, b := build(), build()
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Saccades, b.Saccades)

	b.TrialMeasures["total_time"] = domain.MeasureResult{Value: 400, Calculated: true}
	assert.False(t, a.Equal(b))

	a.TrialMeasures["total_time"] = domain.MeasureResult{Value: 400, Calculated: true}
	assert.True(t, a.Equal(b))

	a.RegionMeasures.Set("0", "skip", domain.MeasureResult{Value: 1, Calculated: true})
	assert.False(t, a.Equal(b))

	c, err := domain.NewTrial(2, intp(400), testItem(), a.Fixations) // different flags
	require.NoError(t, err)
	assert.False(t, build().Equal(c))

	assert.False(t, a.Equal(nil))
}

func TestTrial_String(t *testing.T) {
	trial, err := domain.NewTrial(1, intp(250), testItem(), []domain.Fixation{
		fix(1, 1, 0, 100),
		fix(5, 1, 150, 250),
	})
	require.NoError(t, err)
	assert.Equal(t, "(index: 1, time: 250ms, item: (number: 1, condition: 1, regions: 2), fixations: 2, saccades: 1)", trial.String())

	trial.Time = nil
	assert.Contains(t, trial.String(), "time: none")
}

func TestTrial_Snapshot(t *testing.T) {
	trial, err := domain.NewTrial(0, intp(10), testItem(), []domain.Fixation{fix(1, 1, 0, 100), fix(2, 1, 110, 200)})
	require.NoError(t, err)
	trial.RegionMeasures.Set("0", "dwell", domain.MeasureResult{Value: 90, Calculated: true})

	cp := trial.Snapshot()
	require.True(t, trial.Equal(cp))

	cp.RegionMeasures.Set("0", "dwell", domain.MeasureResult{Value: 1, Calculated: true})
	*cp.Time = 99
	assert.False(t, trial.Equal(cp))
	assert.Equal(t, 10, *trial.Time)
}

func TestTrialKey(t *testing.T) {
	assert.Equal(t, "12.3", domain.TrialKey("12", 3))
}
