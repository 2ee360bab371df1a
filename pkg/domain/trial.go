package domain

import (
	"fmt"
	"maps"
	"slices"
)

// BuildOptions controls how excluded fixations are folded into the surrounding saccade.
type BuildOptions struct {
	// IncludeFixation adds the duration of an excluded fixation to the following saccade.
	IncludeFixation bool `json:"include_fixation" yaml:"include_fixation" mapstructure:"include_fixation"`

	// IncludeSaccades adds the gaps around an excluded fixation to the following saccade,
	// even when the preceding fixation is itself excluded.
	IncludeSaccades bool `json:"include_saccades" yaml:"include_saccades" mapstructure:"include_saccades"`
}

// TrialOption configures trial construction.
type TrialOption func(*BuildOptions)

// WithIncludeFixation sets BuildOptions.IncludeFixation.
func WithIncludeFixation(include bool) TrialOption {
	return func(o *BuildOptions) {
		o.IncludeFixation = include
	}
}

// WithIncludeSaccades sets BuildOptions.IncludeSaccades.
func WithIncludeSaccades(include bool) TrialOption {
	return func(o *BuildOptions) {
		o.IncludeSaccades = include
	}
}

// WithBuildOptions replaces all build options at once.
func WithBuildOptions(opts BuildOptions) TrialOption {
	return func(o *BuildOptions) {
		*o = opts
	}
}

// Trial is one participant's reading pass over one Item.
//
// Fixations and Saccades are fixed at construction. TrialMeasures and RegionMeasures start
// empty and are filled in later by measure computation.
type Trial struct {
	Index          int            `json:"index" yaml:"index"`
	Time           *int           `json:"time,omitempty" yaml:"time,omitempty"` // total ms, nil if unknown
	Item           *Item          `json:"item" yaml:"item"`
	Fixations      []Fixation     `json:"fixations" yaml:"fixations"`
	Saccades       []Saccade      `json:"saccades" yaml:"saccades"`
	TrialMeasures  Measures       `json:"trial_measures" yaml:"trial_measures"`
	RegionMeasures RegionMeasures `json:"region_measures" yaml:"region_measures"`
}

// NewTrial validates its arguments and builds a Trial, reconstructing saccades from fixations.
//
// The fixation slice is copied: the Trial owns its fixations and the caller's slice is not
// modified. Every fixation's Index is set to its position in the sequence.
// Validation failures wrap ErrInvalidArgument.
func NewTrial(index int, time *int, item *Item, fixations []Fixation, opts ...TrialOption) (*Trial, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: index must be non-negative", ErrInvalidArgument)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: trial must have an associated item", ErrInvalidArgument)
	}
	if time != nil && *time < 0 {
		return nil, fmt.Errorf("%w: time must be non-negative", ErrInvalidArgument)
	}

	var cfg BuildOptions
	for _, opt := range opts {
		opt(&cfg)
	}

	owned := cloneFixations(fixations)
	saccades := reconstructSaccades(owned, cfg)
	for i := range owned {
		owned[i].Index = i
	}

	t := &Trial{
		Index:          index,
		Item:           item,
		Fixations:      owned,
		Saccades:       saccades,
		TrialMeasures:  make(Measures),
		RegionMeasures: make(RegionMeasures),
	}
	if time != nil {
		v := *time
		t.Time = &v
	}
	return t, nil
}

// reconstructSaccades walks the fixations once and emits a saccade each time a non-excluded
// fixation follows the current saccade start with a positive accumulated duration.
// Runs of excluded fixations are bridged: the start is kept and, depending on cfg, their
// durations and surrounding gaps are added to the pending saccade.
func reconstructSaccades(fixations []Fixation, cfg BuildOptions) []Saccade {
	saccades := []Saccade{}
	start := -1
	duration := 0

	for key, f := range fixations {
		if !f.Excluded {
			if start >= 0 {
				prev := fixations[key-1]
				if !prev.Excluded || cfg.IncludeSaccades {
					duration += f.Start - prev.End
				}
				if duration > 0 {
					regression := isRegression(fixations[start], f)
					saccades = append(saccades, NewSaccade(duration, regression, start, key))
				}
			}
			start = key
			duration = 0
			continue
		}

		// Excluded fixations before the first usable one have no saccade to join.
		if start < 0 {
			continue
		}
		if cfg.IncludeFixation {
			duration += f.Duration
		}
		if cfg.IncludeSaccades {
			duration += f.Start - fixations[key-1].End
		}
	}

	return saccades
}

// isRegression classifies the movement from -> to. An unlocalized destination counts as a
// regression; otherwise an unlocalized origin counts as a progression.
func isRegression(from, to Fixation) bool {
	dest, ok := to.Position()
	if !ok {
		return true
	}
	origin, ok := from.Position()
	if !ok {
		return false
	}
	return dest.Less(origin)
}

// FixationCount returns the number of fixations that are not excluded.
func (t *Trial) FixationCount() int {
	n := 0
	for _, f := range t.Fixations {
		if !f.Excluded {
			n++
		}
	}
	return n
}

// Regressions returns the number of saccades classified as regressions.
func (t *Trial) Regressions() int {
	n := 0
	for _, s := range t.Saccades {
		if s.Regression {
			n++
		}
	}
	return n
}

// Endpoints resolves the fixations a saccade connects.
// It panics if the saccade does not belong to this trial.
func (t *Trial) Endpoints(s Saccade) (start, end Fixation) {
	return t.Fixations[s.Start], t.Fixations[s.End]
}

// Equal reports whether two trials are structurally equal, including derived saccades
// and measures.
func (t *Trial) Equal(other *Trial) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Index != other.Index || !equalIntPtr(t.Time, other.Time) || !t.Item.Equal(other.Item) {
		return false
	}
	if !slices.EqualFunc(t.Fixations, other.Fixations, Fixation.Equal) {
		return false
	}
	if !slices.Equal(t.Saccades, other.Saccades) {
		return false
	}
	return maps.Equal(t.TrialMeasures, other.TrialMeasures) && t.RegionMeasures.Equal(other.RegionMeasures)
}

func (t *Trial) String() string {
	time := "none"
	if t.Time != nil {
		time = fmt.Sprintf("%dms", *t.Time)
	}
	return fmt.Sprintf("(index: %d, time: %s, item: %s, fixations: %d, saccades: %d)",
		t.Index, time, t.Item, len(t.Fixations), len(t.Saccades))
}

// Key is the default storage key for the trial: "<item number>.<trial index>".
func (t *Trial) Key() string {
	return TrialKey(t.Item.Number, t.Index)
}

// TrialKey builds the default storage key for an item number and trial index.
func TrialKey(itemNumber string, index int) string {
	return fmt.Sprintf("%s.%d", itemNumber, index)
}

// Snapshot returns a deep copy of the trial. The Item is shared.
func (t *Trial) Snapshot() *Trial {
	cp := *t
	cp.Fixations = cloneFixations(t.Fixations)
	cp.Saccades = slices.Clone(t.Saccades)
	cp.TrialMeasures = maps.Clone(t.TrialMeasures)
	cp.RegionMeasures = t.RegionMeasures.Clone()
	if t.Time != nil {
		v := *t.Time
		cp.Time = &v
	}
	return &cp
}

func cloneFixations(in []Fixation) []Fixation {
	out := make([]Fixation, len(in))
	for i, f := range in {
		if f.Char != nil {
			c := *f.Char
			f.Char = &c
		}
		if f.Line != nil {
			l := *f.Line
			f.Line = &l
		}
		out[i] = f
	}
	return out
}
