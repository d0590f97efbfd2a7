package app

import (
	"fmt"

	"github.com/hylla/mergegrid/internal/domain"
)

// PointerState is the drag state of the interaction controller.
type PointerState int

// PointerIdle and PointerSelecting are the two controller states.
const (
	PointerIdle PointerState = iota
	PointerSelecting
)

// String returns the state name.
func (s PointerState) String() string {
	if s == PointerSelecting {
		return "selecting"
	}
	return "idle"
}

// Controller translates pointer events into a normalized selection over one grid.
//
// Controller is not safe for concurrent use; Service serializes access for
// transports that need it.
type Controller struct {
	grid      *domain.Grid
	newKey    domain.KeyFunc
	state     PointerState
	from      *domain.Coord
	to        *domain.Coord
	selection *domain.Selection
}

// NewController builds a fresh width x height grid behind a new controller.
func NewController(width, height int, newKey domain.KeyFunc) *Controller {
	return &Controller{
		grid:   domain.BuildGrid(width, height, newKey),
		newKey: newKey,
	}
}

// Grid returns the live grid; callers must not mutate it.
func (c *Controller) Grid() *domain.Grid {
	return c.grid
}

// State returns the current pointer state.
func (c *Controller) State() PointerState {
	return c.state
}

// Selection returns the current normalized selection.
func (c *Controller) Selection() (domain.Selection, bool) {
	if c.selection == nil {
		return domain.Selection{}, false
	}
	return *c.selection, true
}

// Corners returns the raw drag corners when a drag has started.
func (c *Controller) Corners() (domain.Coord, domain.Coord, bool) {
	if c.from == nil || c.to == nil {
		return domain.Coord{}, domain.Coord{}, false
	}
	return *c.from, *c.to, true
}

// CanMerge reports whether the merge action is enabled.
func (c *Controller) CanMerge() bool {
	return c.selection != nil
}

// CanSeparate reports whether the separate action is enabled.
func (c *Controller) CanSeparate() bool {
	return c.selection != nil
}

// TouchesGroup reports whether the current selection contains any merge group.
func (c *Controller) TouchesGroup() bool {
	sel, ok := c.Selection()
	if !ok {
		return false
	}
	for _, group := range c.grid.Groups() {
		if sel.Covers(group) {
			return true
		}
	}
	return false
}

// PointerDown starts a drag at cell; out-of-bounds cells are ignored.
func (c *Controller) PointerDown(cell domain.Coord) bool {
	if !c.grid.InBounds(cell) {
		return false
	}
	from, to := cell, cell
	c.from, c.to = &from, &to
	c.state = PointerSelecting
	c.refresh()
	return true
}

// PointerMove extends the drag to cell while selecting; otherwise it is ignored.
func (c *Controller) PointerMove(cell domain.Coord) bool {
	if c.state != PointerSelecting || !c.grid.InBounds(cell) {
		return false
	}
	if c.to != nil && *c.to == cell {
		return false
	}
	to := cell
	c.to = &to
	c.refresh()
	return true
}

// PointerUp ends the drag and keeps the selection for later actions.
func (c *Controller) PointerUp() bool {
	if c.state != PointerSelecting {
		return false
	}
	c.state = PointerIdle
	return true
}

// SelectRange performs a complete down/move/up gesture between two cells.
func (c *Controller) SelectRange(a, b domain.Coord) (domain.Selection, error) {
	if !c.grid.InBounds(a) || !c.grid.InBounds(b) {
		return domain.Selection{}, fmt.Errorf("select %v %v: %w", a, b, domain.ErrOutOfBounds)
	}
	c.PointerDown(a)
	c.PointerMove(b)
	c.PointerUp()
	sel, _ := c.Selection()
	return sel, nil
}

// ClearSelection drops the drag corners and the published selection.
func (c *Controller) ClearSelection() {
	c.from, c.to, c.selection = nil, nil, nil
	c.state = PointerIdle
}

// MergeCells merges the current selection.
//
// The selection is kept as-is afterwards: it now covers exactly the new group.
func (c *Controller) MergeCells() (domain.Selection, error) {
	sel, ok := c.Selection()
	if !ok {
		return domain.Selection{}, domain.ErrNoSelection
	}
	if err := c.grid.Merge(sel); err != nil {
		return domain.Selection{}, err
	}
	return sel, nil
}

// SeparateCells separates every merge group in the current selection.
func (c *Controller) SeparateCells() (domain.Selection, error) {
	sel, ok := c.Selection()
	if !ok {
		return domain.Selection{}, domain.ErrNoSelection
	}
	if err := c.grid.Separate(sel); err != nil {
		return domain.Selection{}, err
	}
	return sel, nil
}

// Reset replaces the grid with a fresh one and clears the selection.
func (c *Controller) Reset(width, height int) {
	c.grid = domain.BuildGrid(width, height, c.newKey)
	c.ClearSelection()
}

// Layout returns the renderable projection for the current selection.
func (c *Controller) Layout() domain.Layout {
	return domain.BuildLayout(c.grid, c.selection)
}

// refresh recomputes the published selection from the raw corners.
func (c *Controller) refresh() {
	if c.from == nil || c.to == nil {
		c.selection = nil
		return
	}
	sel, err := domain.Normalize(c.grid, *c.from, *c.to)
	if err != nil {
		c.selection = nil
		return
	}
	c.selection = &sel
}
