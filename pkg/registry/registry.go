package registry

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/aretw0/sideeye/pkg/domain"
)

// TrialMeasure computes one trial-level measure.
// Returning ok == false records the measure as not calculated (e.g. no data).
type TrialMeasure func(ctx context.Context, trial *domain.Trial) (value float64, ok bool, err error)

// RegionMeasure computes one measure for a single region of the trial's item.
type RegionMeasure func(ctx context.Context, trial *domain.Trial, region domain.Region) (value float64, ok bool, err error)

// Registry manages the available measures.
type Registry struct {
	mu      sync.RWMutex
	trial   map[string]TrialMeasure
	regions map[string]RegionMeasure
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		trial:   make(map[string]TrialMeasure),
		regions: make(map[string]RegionMeasure),
	}
}

// RegisterTrial adds a trial-level measure.
// If a measure with the same name exists, it is overwritten.
func (r *Registry) RegisterTrial(name string, fn TrialMeasure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trial[name] = fn
}

// RegisterRegion adds a region-level measure.
// If a measure with the same name exists, it is overwritten.
func (r *Registry) RegisterRegion(name string, fn RegionMeasure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions[name] = fn
}

// Names returns the sorted names of the trial-level and region-level measures.
func (r *Registry) Names() (trial, region []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for n := range r.trial {
		trial = append(trial, n)
	}
	for n := range r.regions {
		region = append(region, n)
	}
	sort.Strings(trial)
	sort.Strings(region)
	return trial, region
}

// Len returns the total number of registered measures.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trial) + len(r.regions)
}

// Apply runs every registered measure against the trial, writing the results into
// TrialMeasures and RegionMeasures. Region measures run once per region of the item.
// Measures run in name order; the first error aborts the pass.
func (r *Registry) Apply(ctx context.Context, trial *domain.Trial) error {
	trialNames, regionNames := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	if trial.TrialMeasures == nil {
		trial.TrialMeasures = make(domain.Measures)
	}
	if trial.RegionMeasures == nil {
		trial.RegionMeasures = make(domain.RegionMeasures)
	}

	for _, name := range trialNames {
		value, ok, err := r.trial[name](ctx, trial)
		if err != nil {
			return fmt.Errorf("measure %s: %w", name, err)
		}
		trial.TrialMeasures[name] = result(value, ok)
	}

	if trial.Item == nil {
		return nil
	}
	for _, region := range trial.Item.Regions {
		for _, name := range regionNames {
			value, ok, err := r.regions[name](ctx, trial, region)
			if err != nil {
				return fmt.Errorf("measure %s (region %s): %w", name, region.Key(), err)
			}
			trial.RegionMeasures.Set(region.Key(), name, result(value, ok))
		}
	}
	return nil
}

// result records non-finite values as not calculated; they have no JSON encoding.
func result(value float64, ok bool) domain.MeasureResult {
	if !ok || math.IsInf(value, 0) || math.IsNaN(value) {
		return domain.MeasureResult{}
	}
	return domain.MeasureResult{Value: value, Calculated: true}
}
