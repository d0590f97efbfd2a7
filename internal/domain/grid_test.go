package domain

import (
	"errors"
	"fmt"
	"testing"
)

// checkGridInvariants verifies every cell belongs to exactly one well-formed merge group.
func checkGridInvariants(t *testing.T, g *Grid) {
	t.Helper()
	owner := map[Coord]Coord{}
	for r := 0; r < g.Height(); r++ {
		for c := 0; c < g.Width(); c++ {
			cell, _ := g.Cell(Coord{Row: r, Col: c})
			if cell.Absorbed() {
				continue
			}
			ext := cell.Extent()
			if !g.InBounds(ext.To) {
				t.Fatalf("anchor %v extent %s leaves the grid", cell.Coord(), ext)
			}
			for rr := ext.From.Row; rr <= ext.To.Row; rr++ {
				for cc := ext.From.Col; cc <= ext.To.Col; cc++ {
					pos := Coord{Row: rr, Col: cc}
					if prev, ok := owner[pos]; ok {
						t.Fatalf("cell %v owned by both %v and %v", pos, prev, cell.Coord())
					}
					owner[pos] = cell.Coord()
					member, _ := g.Cell(pos)
					if pos == cell.Coord() {
						continue
					}
					if member.Parent == nil || *member.Parent != cell.Coord() {
						t.Fatalf("cell %v expected parent %v, got %v", pos, cell.Coord(), member.Parent)
					}
				}
			}
		}
	}
	if len(owner) != g.Width()*g.Height() {
		t.Fatalf("expected %d owned cells, got %d", g.Width()*g.Height(), len(owner))
	}
}

func TestBuildGridDefaults(t *testing.T) {
	g := BuildGrid(4, 3, nil)
	if g.Width() != 4 || g.Height() != 3 {
		t.Fatalf("unexpected dimensions %dx%d", g.Width(), g.Height())
	}
	seen := map[string]struct{}{}
	for r, row := range g.Rows() {
		if len(row) != 4 {
			t.Fatalf("row %d has %d cells", r, len(row))
		}
		for c, cell := range row {
			if cell.Row != r || cell.Col != c {
				t.Fatalf("cell at %d,%d reports %d,%d", r, c, cell.Row, cell.Col)
			}
			if cell.RowSpan != 1 || cell.ColSpan != 1 || cell.Parent != nil {
				t.Fatalf("cell %d,%d not unmerged: %#v", r, c, cell)
			}
			if _, ok := seen[cell.Key]; ok {
				t.Fatalf("duplicate key %q", cell.Key)
			}
			seen[cell.Key] = struct{}{}
		}
	}
	checkGridInvariants(t, g)
}

func TestBuildGridUsesKeyFunc(t *testing.T) {
	n := 0
	g := BuildGrid(2, 2, func() string {
		n++
		return fmt.Sprintf("k%d", n)
	})
	cell, ok := g.Cell(Coord{Row: 1, Col: 1})
	if !ok || cell.Key != "k4" {
		t.Fatalf("unexpected key %q", cell.Key)
	}
}

func TestBuildGridNonPositiveDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 3}, {3, 0}, {-1, 4}, {2, -5}} {
		g := BuildGrid(dims[0], dims[1], nil)
		if g.Width() != 0 || g.Height() != 0 {
			t.Fatalf("BuildGrid(%d,%d) expected empty grid, got %dx%d", dims[0], dims[1], g.Width(), g.Height())
		}
		if _, ok := g.Bounds(); ok {
			t.Fatalf("BuildGrid(%d,%d) expected no bounds", dims[0], dims[1])
		}
		if len(g.Rows()) != 0 {
			t.Fatal("expected no rows")
		}
	}
}

func TestMergeScenario(t *testing.T) {
	g := BuildGrid(4, 4, nil)
	sel := Selection{From: Coord{0, 0}, To: Coord{1, 1}}
	if err := g.Merge(sel); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	anchor, _ := g.Cell(Coord{0, 0})
	if anchor.ColSpan != 2 || anchor.RowSpan != 2 || anchor.Parent != nil {
		t.Fatalf("unexpected anchor %#v", anchor)
	}
	for _, pos := range []Coord{{0, 1}, {1, 0}, {1, 1}} {
		cell, _ := g.Cell(pos)
		if cell.Parent == nil || *cell.Parent != (Coord{0, 0}) {
			t.Fatalf("cell %v expected parent (0,0), got %v", pos, cell.Parent)
		}
	}
	layout := BuildLayout(g, nil)
	if len(layout.Rows[0]) != 3 || len(layout.Rows[1]) != 2 {
		t.Fatalf("absorbed cells should not render, got row lengths %d,%d", len(layout.Rows[0]), len(layout.Rows[1]))
	}
	checkGridInvariants(t, g)
}

func TestMergeIdempotent(t *testing.T) {
	g := BuildGrid(3, 3, nil)
	sel := Selection{From: Coord{0, 0}, To: Coord{1, 2}}
	for i := 0; i < 2; i++ {
		if err := g.Merge(sel); err != nil {
			t.Fatalf("Merge() #%d error = %v", i, err)
		}
	}
	anchor, _ := g.Cell(Coord{0, 0})
	if anchor.RowSpan != 2 || anchor.ColSpan != 3 {
		t.Fatalf("unexpected spans %dx%d", anchor.RowSpan, anchor.ColSpan)
	}
	checkGridInvariants(t, g)
}

func TestMergeSingleCellIsNoop(t *testing.T) {
	g := BuildGrid(3, 3, nil)
	before := g.Rows()
	if err := g.Merge(Selection{From: Coord{2, 2}, To: Coord{2, 2}}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	after := g.Rows()
	for r := range before {
		for c := range before[r] {
			if before[r][c].RowSpan != after[r][c].RowSpan || before[r][c].ColSpan != after[r][c].ColSpan || after[r][c].Parent != nil {
				t.Fatalf("cell %d,%d changed", r, c)
			}
		}
	}
	if len(g.Groups()) != 0 {
		t.Fatalf("expected no groups, got %v", g.Groups())
	}
}

func TestMergeRejectsPartialOverlap(t *testing.T) {
	g := BuildGrid(4, 4, nil)
	if err := g.Merge(Selection{From: Coord{0, 0}, To: Coord{1, 1}}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	err := g.Merge(Selection{From: Coord{1, 1}, To: Coord{2, 2}})
	if !errors.Is(err, ErrNotMergeClosed) {
		t.Fatalf("expected ErrNotMergeClosed, got %v", err)
	}
	err = g.Separate(Selection{From: Coord{0, 1}, To: Coord{0, 1}})
	if !errors.Is(err, ErrNotMergeClosed) {
		t.Fatalf("expected ErrNotMergeClosed from Separate, got %v", err)
	}
	checkGridInvariants(t, g)
}

func TestMergeRejectsOutOfBounds(t *testing.T) {
	g := BuildGrid(2, 2, nil)
	cases := []Selection{
		{From: Coord{0, 0}, To: Coord{2, 0}},
		{From: Coord{-1, 0}, To: Coord{1, 1}},
		{From: Coord{1, 1}, To: Coord{0, 0}},
	}
	for _, sel := range cases {
		if err := g.Merge(sel); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("Merge(%s) expected ErrOutOfBounds, got %v", sel, err)
		}
		if err := g.Separate(sel); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("Separate(%s) expected ErrOutOfBounds, got %v", sel, err)
		}
	}
}

func TestMergeAbsorbsContainedGroups(t *testing.T) {
	g := BuildGrid(4, 4, nil)
	if err := g.Merge(Selection{From: Coord{1, 1}, To: Coord{2, 2}}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if err := g.Merge(Selection{From: Coord{0, 0}, To: Coord{3, 3}}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	inner, _ := g.Cell(Coord{1, 1})
	if inner.Parent == nil || *inner.Parent != (Coord{0, 0}) || inner.RowSpan != 1 || inner.ColSpan != 1 {
		t.Fatalf("unexpected former anchor %#v", inner)
	}
	groups := g.Groups()
	if len(groups) != 1 || groups[0] != (Selection{From: Coord{0, 0}, To: Coord{3, 3}}) {
		t.Fatalf("unexpected groups %v", groups)
	}
	checkGridInvariants(t, g)
}

func TestSeparateRoundTrip(t *testing.T) {
	for _, sel := range []Selection{
		{From: Coord{0, 0}, To: Coord{1, 1}},
		{From: Coord{1, 0}, To: Coord{3, 2}},
		{From: Coord{2, 3}, To: Coord{2, 3}},
		{From: Coord{0, 0}, To: Coord{3, 3}},
	} {
		g := BuildGrid(4, 4, nil)
		if err := g.Merge(sel); err != nil {
			t.Fatalf("Merge(%s) error = %v", sel, err)
		}
		if err := g.Separate(sel); err != nil {
			t.Fatalf("Separate(%s) error = %v", sel, err)
		}
		for _, row := range g.Rows() {
			for _, cell := range row {
				if cell.RowSpan != 1 || cell.ColSpan != 1 || cell.Parent != nil {
					t.Fatalf("cell %v not restored after %s", cell.Coord(), sel)
				}
			}
		}
	}
}

func TestSeparateScenario(t *testing.T) {
	g := BuildGrid(4, 4, nil)
	sel := Selection{From: Coord{0, 0}, To: Coord{1, 1}}
	if err := g.Merge(sel); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if err := g.Separate(sel); err != nil {
		t.Fatalf("Separate() error = %v", err)
	}
	for _, pos := range []Coord{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		cell, _ := g.Cell(pos)
		if cell.RowSpan != 1 || cell.ColSpan != 1 || cell.Parent != nil {
			t.Fatalf("cell %v not separated: %#v", pos, cell)
		}
	}
	if got := BuildLayout(g, nil).Visible(); got != 16 {
		t.Fatalf("expected 16 visible cells, got %d", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := BuildGrid(3, 3, nil)
	if err := g.Merge(Selection{From: Coord{0, 0}, To: Coord{0, 1}}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	clone := g.Clone()
	if err := g.Separate(Selection{From: Coord{0, 0}, To: Coord{0, 1}}); err != nil {
		t.Fatalf("Separate() error = %v", err)
	}
	cell, _ := clone.Cell(Coord{0, 1})
	if cell.Parent == nil {
		t.Fatal("expected clone to keep the merge")
	}
}
