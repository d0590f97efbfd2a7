package domain

import "fmt"

// KeyFunc returns a unique render key for a new cell.
type KeyFunc func() string

// Grid is a fixed-size table of cells addressed by logical row and column.
type Grid struct {
	width  int
	height int
	rows   [][]Cell
}

// BuildGrid constructs a height x width grid of unmerged cells.
//
// Non-positive dimensions produce an empty grid rather than an error.
func BuildGrid(width, height int, newKey KeyFunc) *Grid {
	if width <= 0 || height <= 0 {
		return &Grid{}
	}
	if newKey == nil {
		newKey = positionalKeys()
	}
	rows := make([][]Cell, height)
	for r := range rows {
		cells := make([]Cell, width)
		for c := range cells {
			cells[c] = Cell{
				Key:     newKey(),
				Row:     r,
				Col:     c,
				RowSpan: 1,
				ColSpan: 1,
			}
		}
		rows[r] = cells
	}
	return &Grid{width: width, height: height, rows: rows}
}

// positionalKeys returns a deterministic key sequence for callers without an id source.
func positionalKeys() KeyFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("cell-%d", n)
	}
}

// Width returns the number of logical columns.
func (g *Grid) Width() int {
	if g == nil {
		return 0
	}
	return g.width
}

// Height returns the number of logical rows.
func (g *Grid) Height() int {
	if g == nil {
		return 0
	}
	return g.height
}

// Bounds returns the rectangle covering the whole grid and false for an empty grid.
func (g *Grid) Bounds() (Selection, bool) {
	if g.Width() == 0 || g.Height() == 0 {
		return Selection{}, false
	}
	return Selection{To: Coord{Row: g.height - 1, Col: g.width - 1}}, true
}

// InBounds reports whether c addresses a cell of the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.Height() && c.Col >= 0 && c.Col < g.Width()
}

// Cell returns a copy of the cell at c.
func (g *Grid) Cell(c Coord) (Cell, bool) {
	if !g.InBounds(c) {
		return Cell{}, false
	}
	return g.rows[c.Row][c.Col], true
}

// at returns the addressable cell at c; callers must bounds-check first.
func (g *Grid) at(c Coord) *Cell {
	return &g.rows[c.Row][c.Col]
}

// Rows returns a deep copy of the cell table in row-major order.
func (g *Grid) Rows() [][]Cell {
	return g.Clone().rows
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return &Grid{}
	}
	out := &Grid{width: g.width, height: g.height, rows: make([][]Cell, len(g.rows))}
	for r, row := range g.rows {
		cells := make([]Cell, len(row))
		for c, cell := range row {
			if cell.Parent != nil {
				parent := *cell.Parent
				cell.Parent = &parent
			}
			cells[c] = cell
		}
		out.rows[r] = cells
	}
	return out
}

// Groups returns every multi-cell merge group in row-major anchor order.
func (g *Grid) Groups() []Selection {
	var out []Selection
	for r := 0; r < g.Height(); r++ {
		for c := 0; c < g.Width(); c++ {
			cell := g.rows[r][c]
			if cell.IsAnchor() {
				out = append(out, cell.Extent())
			}
		}
	}
	return out
}

// checkBounds validates that the selection is canonical and inside the grid.
func (g *Grid) checkBounds(sel Selection) error {
	if !g.InBounds(sel.From) || !g.InBounds(sel.To) {
		return fmt.Errorf("%w: %s outside %dx%d grid", ErrOutOfBounds, sel, g.Width(), g.Height())
	}
	if sel.From.Row > sel.To.Row || sel.From.Col > sel.To.Col {
		return fmt.Errorf("%w: %s is not canonical", ErrOutOfBounds, sel)
	}
	return nil
}

// IsMergeClosed reports whether every merge group touched by sel lies fully inside it.
func (g *Grid) IsMergeClosed(sel Selection) bool {
	if g.checkBounds(sel) != nil {
		return false
	}
	for r := sel.From.Row; r <= sel.To.Row; r++ {
		for c := sel.From.Col; c <= sel.To.Col; c++ {
			cell := g.rows[r][c]
			if cell.Parent != nil && !sel.Contains(*cell.Parent) {
				return false
			}
			if !sel.Covers(cell.Extent()) {
				return false
			}
		}
	}
	return true
}

// Merge turns the selection into one merge group anchored at its top-left cell.
//
// The selection must be inside the grid and merge-closed. Merge groups already
// inside the selection are absorbed into the new group.
func (g *Grid) Merge(sel Selection) error {
	if err := g.checkBounds(sel); err != nil {
		return err
	}
	if !g.IsMergeClosed(sel) {
		return fmt.Errorf("merge %s: %w", sel, ErrNotMergeClosed)
	}
	anchor := g.at(sel.From)
	anchor.Parent = nil
	anchor.RowSpan = sel.Rows()
	anchor.ColSpan = sel.Cols()
	for r := sel.From.Row; r <= sel.To.Row; r++ {
		for c := sel.From.Col; c <= sel.To.Col; c++ {
			if r == sel.From.Row && c == sel.From.Col {
				continue
			}
			cell := g.at(Coord{Row: r, Col: c})
			cell.RowSpan = 1
			cell.ColSpan = 1
			cell.Parent = &Coord{Row: sel.From.Row, Col: sel.From.Col}
		}
	}
	return nil
}

// Separate dissolves every merge group inside the selection back into single cells.
func (g *Grid) Separate(sel Selection) error {
	if err := g.checkBounds(sel); err != nil {
		return err
	}
	if !g.IsMergeClosed(sel) {
		return fmt.Errorf("separate %s: %w", sel, ErrNotMergeClosed)
	}
	for r := sel.From.Row; r <= sel.To.Row; r++ {
		for c := sel.From.Col; c <= sel.To.Col; c++ {
			g.at(Coord{Row: r, Col: c}).reset()
		}
	}
	return nil
}
