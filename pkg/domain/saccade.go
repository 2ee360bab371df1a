package domain

// Saccade is an eye movement between two fixations of the same Trial.
//
// Start and End are indices into the owning Trial's Fixations; a Saccade never owns the
// fixations it connects. Use Trial.Endpoints to resolve them.
type Saccade struct {
	Duration   int  `json:"duration" yaml:"duration"` // ms, may be 0
	Regression bool `json:"regression" yaml:"regression"`
	Start      int  `json:"start" yaml:"start"`
	End        int  `json:"end" yaml:"end"`
}

// NewSaccade creates a Saccade between the fixations at positions start and end.
func NewSaccade(duration int, regression bool, start, end int) Saccade {
	return Saccade{
		Duration:   duration,
		Regression: regression,
		Start:      start,
		End:        end,
	}
}
