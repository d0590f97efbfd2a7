// Package textgrid draws a grid layout as a box-drawing canvas for terminals.
package textgrid

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/hylla/mergegrid/internal/domain"
)

// DefaultCellWidth is the interior width of one logical column.
const DefaultCellWidth = 9

// Options configures rendering.
type Options struct {
	CellWidth     int
	ShowLabels    bool
	BorderStyle   lipgloss.Style
	SelectedStyle lipgloss.Style
	LabelStyle    lipgloss.Style
}

// DefaultOptions returns the terminal palette used by the TUI.
func DefaultOptions() Options {
	return Options{
		CellWidth:     DefaultCellWidth,
		ShowLabels:    true,
		BorderStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		SelectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("62")).Bold(true),
		LabelStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}

// paint classifies one canvas position for styling.
type paint uint8

const (
	paintBorder paint = iota
	paintBlank
	paintLabel
	paintSelected
)

// Canvas is one rendered grid frame.
type Canvas struct {
	width     int
	height    int
	cols      int
	rows      int
	cellWidth int
	runes     [][]rune
	paints    [][]paint
	opts      Options
}

// Render draws layout onto a new canvas.
//
// Each logical row takes one content line plus a shared border line, and each
// logical column takes CellWidth runes plus a shared border column. Borders
// between cells of the same merge group are left blank.
func Render(layout domain.Layout, opts Options) Canvas {
	if opts.CellWidth < 3 {
		opts.CellWidth = DefaultCellWidth
	}
	c := Canvas{
		cols:      layout.Width,
		rows:      layout.Height,
		cellWidth: opts.CellWidth,
		opts:      opts,
	}
	if c.cols <= 0 || c.rows <= 0 {
		return c
	}
	c.width = c.cols*(c.cellWidth+1) + 1
	c.height = c.rows*2 + 1
	c.runes = make([][]rune, c.height)
	c.paints = make([][]paint, c.height)
	for y := range c.runes {
		c.runes[y] = []rune(strings.Repeat(" ", c.width))
		c.paints[y] = make([]paint, c.width)
	}

	owner := ownerMatrix(layout)
	c.drawBorders(owner)
	for _, row := range layout.Rows {
		for _, cell := range row {
			c.fillCell(cell)
		}
	}
	return c
}

// ownerMatrix maps every logical position to the anchor of its merge group.
func ownerMatrix(layout domain.Layout) [][]domain.Coord {
	owner := make([][]domain.Coord, layout.Height)
	for r := range owner {
		owner[r] = make([]domain.Coord, layout.Width)
		for col := range owner[r] {
			owner[r][col] = domain.Coord{Row: r, Col: col}
		}
	}
	for _, row := range layout.Rows {
		for _, cell := range row {
			anchor := domain.Coord{Row: cell.Row, Col: cell.Col}
			for r := cell.Row; r < cell.Row+cell.RowSpan && r < layout.Height; r++ {
				for col := cell.Col; col < cell.Col+cell.ColSpan && col < layout.Width; col++ {
					owner[r][col] = anchor
				}
			}
		}
	}
	return owner
}

// drawBorders draws every border segment and junction that separates two groups.
func (c *Canvas) drawBorders(owner [][]domain.Coord) {
	vertical := func(r, boundary int) bool {
		if r < 0 || r >= c.rows {
			return false
		}
		return boundary == 0 || boundary == c.cols || owner[r][boundary-1] != owner[r][boundary]
	}
	horizontal := func(boundary, col int) bool {
		if col < 0 || col >= c.cols {
			return false
		}
		return boundary == 0 || boundary == c.rows || owner[boundary-1][col] != owner[boundary][col]
	}

	for r := 0; r < c.rows; r++ {
		y := r*2 + 1
		for b := 0; b <= c.cols; b++ {
			if vertical(r, b) {
				c.set(b*(c.cellWidth+1), y, '│', paintBorder)
			}
		}
	}
	for b := 0; b <= c.rows; b++ {
		y := b * 2
		for col := 0; col < c.cols; col++ {
			if !horizontal(b, col) {
				continue
			}
			x0 := col*(c.cellWidth+1) + 1
			for x := x0; x < x0+c.cellWidth; x++ {
				c.set(x, y, '─', paintBorder)
			}
		}
		for vb := 0; vb <= c.cols; vb++ {
			arms := junction{
				up:    vertical(b-1, vb),
				down:  vertical(b, vb),
				left:  horizontal(b, vb-1),
				right: horizontal(b, vb),
			}
			if ch := arms.rune(); ch != ' ' {
				c.set(vb*(c.cellWidth+1), y, ch, paintBorder)
			}
		}
	}
}

// fillCell paints the interior of one rendered cell and writes its label.
func (c *Canvas) fillCell(cell domain.RenderCell) {
	x0 := cell.Col*(c.cellWidth+1) + 1
	x1 := (cell.Col + cell.ColSpan) * (c.cellWidth + 1)
	y0 := cell.Row*2 + 1
	y1 := (cell.Row + cell.RowSpan) * 2
	fill := paintBlank
	if cell.Selected {
		fill = paintSelected
	}
	for y := y0; y < y1 && y < c.height; y++ {
		for x := x0; x < x1 && x < c.width; x++ {
			c.set(x, y, ' ', fill)
		}
	}
	if !c.opts.ShowLabels {
		return
	}
	label := []rune(fmt.Sprintf("%d:%d", cell.Row, cell.Col))
	span := x1 - x0
	if len(label) > span {
		label = label[:span]
	}
	y := y0 + (y1-y0-1)/2
	start := x0 + (span-len(label))/2
	labelPaint := paintLabel
	if cell.Selected {
		labelPaint = paintSelected
	}
	for i, ch := range label {
		c.set(start+i, y, ch, labelPaint)
	}
}

func (c *Canvas) set(x, y int, ch rune, p paint) {
	if y < 0 || y >= c.height || x < 0 || x >= c.width {
		return
	}
	c.runes[y][x] = ch
	c.paints[y][x] = p
}

// Size returns the canvas dimensions in terminal cells.
func (c Canvas) Size() (int, int) {
	return c.width, c.height
}

// Plain returns the canvas without styling.
func (c Canvas) Plain() string {
	lines := make([]string, 0, len(c.runes))
	for _, line := range c.runes {
		lines = append(lines, string(line))
	}
	return strings.Join(lines, "\n")
}

// String returns the styled canvas.
func (c Canvas) String() string {
	lines := make([]string, 0, len(c.runes))
	for y, line := range c.runes {
		var b strings.Builder
		start := 0
		for x := 1; x <= len(line); x++ {
			if x < len(line) && c.paints[y][x] == c.paints[y][start] {
				continue
			}
			b.WriteString(c.style(c.paints[y][start]).Render(string(line[start:x])))
			start = x
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func (c Canvas) style(p paint) lipgloss.Style {
	switch p {
	case paintBorder:
		return c.opts.BorderStyle
	case paintSelected:
		return c.opts.SelectedStyle
	case paintLabel:
		return c.opts.LabelStyle
	default:
		return lipgloss.NewStyle()
	}
}

// CellAt maps a canvas offset to the logical cell under it.
//
// Border columns belong to the cell on their left and border lines to the cell
// above, so a drag across a border never skips a cell. Offsets on the outer
// frame or beyond it report false.
func (c Canvas) CellAt(x, y int) (domain.Coord, bool) {
	if c.cols <= 0 || c.rows <= 0 {
		return domain.Coord{}, false
	}
	if x < 1 || y < 1 || x >= c.width-1 || y >= c.height-1 {
		return domain.Coord{}, false
	}
	return domain.Coord{Row: (y - 1) / 2, Col: (x - 1) / (c.cellWidth + 1)}, true
}

// junction records which border arms meet at one crossing.
type junction struct {
	up, down, left, right bool
}

func (j junction) rune() rune {
	switch {
	case j.up && j.down && j.left && j.right:
		return '┼'
	case j.up && j.down && j.right:
		return '├'
	case j.up && j.down && j.left:
		return '┤'
	case j.left && j.right && j.down:
		return '┬'
	case j.left && j.right && j.up:
		return '┴'
	case j.down && j.right:
		return '┌'
	case j.down && j.left:
		return '┐'
	case j.up && j.right:
		return '└'
	case j.up && j.left:
		return '┘'
	case j.up || j.down:
		return '│'
	case j.left || j.right:
		return '─'
	default:
		return ' '
	}
}
