package domain

import "maps"

// MeasureResult holds the value of one named measure.
// Calculated is false when the measure is undefined for the data (e.g. a region never fixated).
type MeasureResult struct {
	Value      float64 `json:"value" yaml:"value"`
	Calculated bool    `json:"calculated" yaml:"calculated"`
}

// Measures maps a measure name to its result.
type Measures map[string]MeasureResult

// RegionMeasures maps a region key (see Region.Key) to the measures computed for that region.
//
// Inner maps are created explicitly through Ensure or Set; reading an absent region with Get
// never allocates.
type RegionMeasures map[string]Measures

// Ensure returns the measures for regionID, inserting an empty map if the region has none yet.
func (rm RegionMeasures) Ensure(regionID string) Measures {
	m, ok := rm[regionID]
	if !ok {
		m = make(Measures)
		rm[regionID] = m
	}
	return m
}

// Set stores a measure result for a region.
func (rm RegionMeasures) Set(regionID, name string, result MeasureResult) {
	rm.Ensure(regionID)[name] = result
}

// Get returns a measure result for a region.
func (rm RegionMeasures) Get(regionID, name string) (MeasureResult, bool) {
	m, ok := rm[regionID]
	if !ok {
		return MeasureResult{}, false
	}
	res, ok := m[name]
	return res, ok
}

// Equal reports whether both maps hold the same regions and results.
func (rm RegionMeasures) Equal(other RegionMeasures) bool {
	return maps.EqualFunc(rm, other, func(a, b Measures) bool {
		return maps.Equal(a, b)
	})
}

// Clone returns a deep copy.
func (rm RegionMeasures) Clone() RegionMeasures {
	out := make(RegionMeasures, len(rm))
	for k, v := range rm {
		out[k] = maps.Clone(v)
	}
	return out
}
