package dsl

import (
	"slices"

	"github.com/aretw0/sideeye/pkg/domain"
)

// Sequence provides a fluent API for a trial's fixation sequence.
type Sequence struct {
	fixations []domain.Fixation
}

// Fixations starts an empty sequence.
func Fixations() *Sequence {
	return &Sequence{}
}

// At appends a fixation localized at (char, line) lasting from start to end.
func (s *Sequence) At(char, line, start, end int) *Sequence {
	s.fixations = append(s.fixations, domain.NewFixation(domain.NewPoint(char, line), start, end, nil))
	return s
}

// Off appends a fixation that could not be localized on the text.
func (s *Sequence) Off(start, end int) *Sequence {
	s.fixations = append(s.fixations, domain.Fixation{Start: start, End: end, Duration: end - start})
	return s
}

// Exclude marks the most recently added fixation as excluded.
func (s *Sequence) Exclude() *Sequence {
	if n := len(s.fixations); n > 0 {
		s.fixations[n-1].Excluded = true
	}
	return s
}

// Duration overrides the duration of the most recently added fixation,
// for recordings where it disagrees with end - start.
func (s *Sequence) Duration(ms int) *Sequence {
	if n := len(s.fixations); n > 0 {
		s.fixations[n-1].Duration = ms
	}
	return s
}

// List returns a copy of the fixations added so far.
func (s *Sequence) List() []domain.Fixation {
	return slices.Clone(s.fixations)
}

// Trial builds a trial over item from the sequence.
func (s *Sequence) Trial(index int, item *domain.Item, opts ...domain.TrialOption) (*domain.Trial, error) {
	return domain.NewTrial(index, nil, item, s.fixations, opts...)
}
