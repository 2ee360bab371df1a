package domain

import (
	"fmt"
	"slices"
	"strconv"
)

// Region is a contiguous span of an Item's text, from Start (inclusive) to End (exclusive).
type Region struct {
	Number int    `json:"number" yaml:"number"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Start  Point  `json:"start" yaml:"start"`
	End    Point  `json:"end" yaml:"end"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Key is the identifier used for the region in Trial.RegionMeasures.
func (r Region) Key() string {
	return strconv.Itoa(r.Number)
}

// Contains reports whether p falls inside the region.
func (r Region) Contains(p Point) bool {
	return !p.Less(r.Start) && p.Less(r.End)
}

// Equal compares two regions by value.
func (r Region) Equal(other Region) bool {
	return r == other
}

// Item is a stimulus read by participants, divided into ordered Regions.
type Item struct {
	Number    string   `json:"number" yaml:"number"`
	Condition string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Regions   []Region `json:"regions,omitempty" yaml:"regions,omitempty"`
	Labels    []string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// RegionAt returns the region containing p, or nil.
func (i *Item) RegionAt(p Point) *Region {
	for idx := range i.Regions {
		if i.Regions[idx].Contains(p) {
			return &i.Regions[idx]
		}
	}
	return nil
}

// Validate checks the minimal structure the trial layer relies on.
func (i *Item) Validate() error {
	if i.Number == "" {
		return fmt.Errorf("item number is required")
	}
	for _, r := range i.Regions {
		if r.End.Less(r.Start) {
			return fmt.Errorf("item %s: region %d ends before it starts", i.Number, r.Number)
		}
	}
	return nil
}

// Equal compares two items by value.
func (i *Item) Equal(other *Item) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.Number == other.Number &&
		i.Condition == other.Condition &&
		slices.Equal(i.Regions, other.Regions) &&
		slices.Equal(i.Labels, other.Labels)
}

func (i *Item) String() string {
	if i.Condition == "" {
		return fmt.Sprintf("(number: %s, regions: %d)", i.Number, len(i.Regions))
	}
	return fmt.Sprintf("(number: %s, condition: %s, regions: %d)", i.Number, i.Condition, len(i.Regions))
}
