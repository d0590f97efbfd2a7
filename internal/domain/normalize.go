package domain

import "fmt"

// Normalize expands the rectangle spanned by two corners until it is merge-closed.
//
// Both corners must be inside the grid. The result is the smallest rectangle that
// contains both corners and fully contains every merge group it touches.
func Normalize(g *Grid, a, b Coord) (Selection, error) {
	if !g.InBounds(a) || !g.InBounds(b) {
		return Selection{}, fmt.Errorf("normalize %v %v: %w", a, b, ErrOutOfBounds)
	}
	sel := NewSelection(a, b)

	// From only shrinks and To only grows, both within the grid, so the scan
	// reaches a fixed point in at most width+height passes.
	limit := g.Width() + g.Height() + 1
	for pass := 0; pass < limit; pass++ {
		next := expandOnce(g, sel)
		if next == sel {
			return sel, nil
		}
		sel = next
	}
	return sel, nil
}

// NormalizeSelection re-normalizes an existing rectangle.
func NormalizeSelection(g *Grid, sel Selection) (Selection, error) {
	return Normalize(g, sel.From, sel.To)
}

// expandOnce runs one scan over sel and widens it to cover every touched group.
func expandOnce(g *Grid, sel Selection) Selection {
	out := sel
	for r := sel.From.Row; r <= sel.To.Row; r++ {
		for c := sel.From.Col; c <= sel.To.Col; c++ {
			cell := g.rows[r][c]
			out.To.Col = max(out.To.Col, c+cell.ColSpan-1)
			out.To.Row = max(out.To.Row, r+cell.RowSpan-1)
			if cell.Parent != nil {
				out.From.Col = min(out.From.Col, cell.Parent.Col)
				out.From.Row = min(out.From.Row, cell.Parent.Row)
			}
		}
	}
	out.To.Row = min(out.To.Row, g.Height()-1)
	out.To.Col = min(out.To.Col, g.Width()-1)
	out.From.Row = max(out.From.Row, 0)
	out.From.Col = max(out.From.Col, 0)
	return out
}
