package dto

import (
	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/aretw0/sideeye/pkg/ports"
)

// FixationInput is one fixation as written in trial files and request bodies.
// Char and Line are omitted (or null) when the fixation was not localized.
type FixationInput struct {
	Start    int  `json:"start" yaml:"start" mapstructure:"start"`
	End      int  `json:"end" yaml:"end" mapstructure:"end"`
	Duration *int `json:"duration,omitempty" yaml:"duration,omitempty" mapstructure:"duration"`
	Char     *int `json:"char,omitempty" yaml:"char,omitempty" mapstructure:"char"`
	Line     *int `json:"line,omitempty" yaml:"line,omitempty" mapstructure:"line"`
	Excluded bool `json:"excluded,omitempty" yaml:"excluded,omitempty" mapstructure:"excluded"`
	Region   *int `json:"region,omitempty" yaml:"region,omitempty" mapstructure:"region"`
}

// TrialInput is the wire form of a build request.
type TrialInput struct {
	Key        string               `json:"key,omitempty" yaml:"key,omitempty" mapstructure:"key"`
	Index      int                  `json:"index" yaml:"index" mapstructure:"index"`
	Time       *int                 `json:"time,omitempty" yaml:"time,omitempty" mapstructure:"time"`
	ItemNumber string               `json:"item_number,omitempty" yaml:"item_number,omitempty" mapstructure:"item_number"`
	Item       *domain.Item         `json:"item,omitempty" yaml:"item,omitempty" mapstructure:"item"`
	Fixations  []FixationInput      `json:"fixations" yaml:"fixations" mapstructure:"fixations"`
	Options    *domain.BuildOptions `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
}

// ToFixation converts the input. A missing duration is derived from end - start.
func (in FixationInput) ToFixation() domain.Fixation {
	f := domain.Fixation{
		Start:    in.Start,
		End:      in.End,
		Duration: in.End - in.Start,
		Excluded: in.Excluded,
	}
	if in.Duration != nil {
		f.Duration = *in.Duration
	}
	if in.Char != nil {
		c := *in.Char
		f.Char = &c
	}
	if in.Line != nil {
		l := *in.Line
		f.Line = &l
	}
	return f
}

// FromFixation is the inverse of ToFixation.
func FromFixation(f domain.Fixation) FixationInput {
	d := f.Duration
	in := FixationInput{
		Start:    f.Start,
		End:      f.End,
		Duration: &d,
		Char:     f.Char,
		Line:     f.Line,
		Excluded: f.Excluded,
	}
	if f.Region != nil {
		n := f.Region.Number
		in.Region = &n
	}
	return in
}

// ToRequest converts the input into a build request. Region numbers are resolved
// against Item when it is inline; otherwise the analyzer assigns regions by position.
func (in TrialInput) ToRequest() ports.BuildRequest {
	fixations := make([]domain.Fixation, len(in.Fixations))
	for i, fi := range in.Fixations {
		fixations[i] = fi.ToFixation()
		if fi.Region != nil && in.Item != nil {
			fixations[i].Region = findRegion(in.Item, *fi.Region)
		}
	}
	return ports.BuildRequest{
		Key:        in.Key,
		Index:      in.Index,
		Time:       in.Time,
		Item:       in.Item,
		ItemNumber: in.ItemNumber,
		Fixations:  fixations,
		Options:    in.Options,
	}
}

func findRegion(item *domain.Item, number int) *domain.Region {
	for i := range item.Regions {
		if item.Regions[i].Number == number {
			return &item.Regions[i]
		}
	}
	return nil
}
