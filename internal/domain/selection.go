package domain

import "fmt"

// Selection is an inclusive rectangle from its top-left to its bottom-right corner.
type Selection struct {
	From Coord `json:"from"`
	To   Coord `json:"to"`
}

// NewSelection builds the canonical rectangle spanned by two corners given in any order.
func NewSelection(a, b Coord) Selection {
	return Selection{
		From: Coord{Row: min(a.Row, b.Row), Col: min(a.Col, b.Col)},
		To:   Coord{Row: max(a.Row, b.Row), Col: max(a.Col, b.Col)},
	}
}

// Contains reports whether c lies inside the rectangle.
func (s Selection) Contains(c Coord) bool {
	return c.Row >= s.From.Row && c.Row <= s.To.Row &&
		c.Col >= s.From.Col && c.Col <= s.To.Col
}

// Covers reports whether other lies fully inside s.
func (s Selection) Covers(other Selection) bool {
	return s.Contains(other.From) && s.Contains(other.To)
}

// Overlaps reports whether the two rectangles share at least one position.
func (s Selection) Overlaps(other Selection) bool {
	return s.From.Row <= other.To.Row && other.From.Row <= s.To.Row &&
		s.From.Col <= other.To.Col && other.From.Col <= s.To.Col
}

// Rows returns the number of rows covered.
func (s Selection) Rows() int {
	return s.To.Row - s.From.Row + 1
}

// Cols returns the number of columns covered.
func (s Selection) Cols() int {
	return s.To.Col - s.From.Col + 1
}

// Single reports whether the rectangle covers exactly one position.
func (s Selection) Single() bool {
	return s.From == s.To
}

// String renders the rectangle as zero-based (row,col)-(row,col).
func (s Selection) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", s.From.Row, s.From.Col, s.To.Row, s.To.Col)
}
