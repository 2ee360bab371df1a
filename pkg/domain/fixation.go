package domain

import "fmt"

// Fixation is a single gaze pause recorded during a Trial.
//
// Char and Line are nil when the fixation could not be localized to the stimulus text
// (e.g. gaze outside the text area). Index is assigned by NewTrial and overwritten there;
// code outside trial construction should treat it as read-only.
type Fixation struct {
	Index    int     `json:"index" yaml:"index"`
	Start    int     `json:"start" yaml:"start"`       // ms from trial onset
	End      int     `json:"end" yaml:"end"`           // ms from trial onset
	Duration int     `json:"duration" yaml:"duration"` // expected to equal End - Start
	Char     *int    `json:"char,omitempty" yaml:"char,omitempty"`
	Line     *int    `json:"line,omitempty" yaml:"line,omitempty"`
	Excluded bool    `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	Region   *Region `json:"region,omitempty" yaml:"region,omitempty"`
}

// NewFixation creates a localized fixation. Duration is derived from start and end.
func NewFixation(p Point, start, end int, region *Region) Fixation {
	char, line := p.Char, p.Line
	return Fixation{
		Start:    start,
		End:      end,
		Duration: end - start,
		Char:     &char,
		Line:     &line,
		Region:   region,
	}
}

// Position returns the fixation's point. ok is false if either coordinate is unknown.
func (f Fixation) Position() (p Point, ok bool) {
	if f.Char == nil || f.Line == nil {
		return Point{}, false
	}
	return Point{Char: *f.Char, Line: *f.Line}, true
}

// Localized reports whether both coordinates are known.
func (f Fixation) Localized() bool {
	_, ok := f.Position()
	return ok
}

// Equal compares two fixations by value, following the Char/Line/Region pointers.
func (f Fixation) Equal(other Fixation) bool {
	if f.Index != other.Index || f.Start != other.Start || f.End != other.End ||
		f.Duration != other.Duration || f.Excluded != other.Excluded {
		return false
	}
	if !equalIntPtr(f.Char, other.Char) || !equalIntPtr(f.Line, other.Line) {
		return false
	}
	if (f.Region == nil) != (other.Region == nil) {
		return false
	}
	return f.Region == nil || f.Region.Equal(*other.Region)
}

func (f Fixation) String() string {
	pos := "unknown"
	if p, ok := f.Position(); ok {
		pos = p.String()
	}
	return fmt.Sprintf("(index: %d, position: %s, start: %d, end: %d, excluded: %t)",
		f.Index, pos, f.Start, f.End, f.Excluded)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
