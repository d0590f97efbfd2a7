package domain

// RenderCell is one visible cell: an unmerged cell or a merge anchor.
type RenderCell struct {
	Key      string `json:"key"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	RowSpan  int    `json:"row_span"`
	ColSpan  int    `json:"col_span"`
	Selected bool   `json:"selected"`
}

// Layout is the renderable projection of a grid; Rows has one entry per logical row.
type Layout struct {
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Rows      [][]RenderCell `json:"rows"`
	Selection *Selection     `json:"selection,omitempty"`
}

// BuildLayout projects the grid into visible cells, skipping absorbed cells.
//
// Selected is computed from each cell's own position, not its span extent.
func BuildLayout(g *Grid, sel *Selection) Layout {
	out := Layout{
		Width:  g.Width(),
		Height: g.Height(),
		Rows:   make([][]RenderCell, g.Height()),
	}
	if sel != nil {
		s := *sel
		out.Selection = &s
	}
	for r := 0; r < g.Height(); r++ {
		row := make([]RenderCell, 0, g.Width())
		for c := 0; c < g.Width(); c++ {
			cell := g.rows[r][c]
			if cell.Absorbed() {
				continue
			}
			row = append(row, RenderCell{
				Key:      cell.Key,
				Row:      cell.Row,
				Col:      cell.Col,
				RowSpan:  cell.RowSpan,
				ColSpan:  cell.ColSpan,
				Selected: sel != nil && sel.Contains(cell.Coord()),
			})
		}
		out.Rows[r] = row
	}
	return out
}

// Visible returns the number of rendered cells.
func (l Layout) Visible() int {
	n := 0
	for _, row := range l.Rows {
		n += len(row)
	}
	return n
}
