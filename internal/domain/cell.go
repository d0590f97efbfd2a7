package domain

// Coord identifies one logical (non-merged) grid position.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Less reports whether c comes before other in row-major order.
func (c Coord) Less(other Coord) bool {
	if c.Row != other.Row {
		return c.Row < other.Row
	}
	return c.Col < other.Col
}

// Cell is one logical grid position and its merge state.
//
// A cell with a nil Parent and spans greater than one is a merge anchor. A cell
// with Parent set is absorbed by the anchor at that coordinate and renders nothing.
type Cell struct {
	Key     string `json:"key"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	RowSpan int    `json:"row_span"`
	ColSpan int    `json:"col_span"`
	Parent  *Coord `json:"parent,omitempty"`
}

// Coord returns the cell position.
func (c Cell) Coord() Coord {
	return Coord{Row: c.Row, Col: c.Col}
}

// Absorbed reports whether the cell belongs to another cell's merge group.
func (c Cell) Absorbed() bool {
	return c.Parent != nil
}

// IsAnchor reports whether the cell is the top-left cell of a multi-cell merge group.
func (c Cell) IsAnchor() bool {
	return c.Parent == nil && (c.RowSpan > 1 || c.ColSpan > 1)
}

// Extent returns the rectangle covered by the cell's own span.
func (c Cell) Extent() Selection {
	return Selection{
		From: c.Coord(),
		To:   Coord{Row: c.Row + c.RowSpan - 1, Col: c.Col + c.ColSpan - 1},
	}
}

// reset returns the cell to its unmerged state.
func (c *Cell) reset() {
	c.RowSpan = 1
	c.ColSpan = 1
	c.Parent = nil
}
