package domain

import "fmt"

// Point is a position in the stimulus text: a character offset on a line.
// Points are ordered in reading order (line first, then character).
type Point struct {
	Char int `json:"char" yaml:"char"`
	Line int `json:"line" yaml:"line"`
}

// NewPoint creates a Point.
func NewPoint(char, line int) Point {
	return Point{Char: char, Line: line}
}

// Less reports whether p comes before other in reading order.
func (p Point) Less(other Point) bool {
	return p.Line < other.Line || (p.Line == other.Line && p.Char < other.Char)
}

// Compare returns -1, 0 or +1 depending on whether p is before, equal to or after other.
func (p Point) Compare(other Point) int {
	switch {
	case p.Less(other):
		return -1
	case other.Less(p):
		return 1
	default:
		return 0
	}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.Char, p.Line)
}
