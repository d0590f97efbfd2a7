package textgrid

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/hylla/mergegrid/internal/domain"
)

// plainOptions renders without styles so output can be compared directly.
func plainOptions(cellWidth int) Options {
	return Options{
		CellWidth:     cellWidth,
		ShowLabels:    true,
		BorderStyle:   lipgloss.NewStyle(),
		SelectedStyle: lipgloss.NewStyle(),
		LabelStyle:    lipgloss.NewStyle(),
	}
}

func sel(r0, c0, r1, c1 int) domain.Selection {
	return domain.Selection{From: domain.Coord{Row: r0, Col: c0}, To: domain.Coord{Row: r1, Col: c1}}
}

// TestRenderUnmergedGrid verifies the frame of a plain grid.
func TestRenderUnmergedGrid(t *testing.T) {
	g := domain.BuildGrid(2, 2, nil)
	canvas := Render(domain.BuildLayout(g, nil), plainOptions(3))
	want := strings.Join([]string{
		"┌───┬───┐",
		"│0:0│0:1│",
		"├───┼───┤",
		"│1:0│1:1│",
		"└───┴───┘",
	}, "\n")
	if got := canvas.Plain(); got != want {
		t.Fatalf("unexpected canvas\n%s\nwant\n%s", got, want)
	}
	w, h := canvas.Size()
	if w != 9 || h != 5 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
}

// TestRenderErasesInteriorBorders verifies merged groups draw as one box.
func TestRenderErasesInteriorBorders(t *testing.T) {
	g := domain.BuildGrid(3, 2, nil)
	if err := g.Merge(sel(0, 0, 1, 1)); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	canvas := Render(domain.BuildLayout(g, nil), plainOptions(3))
	want := strings.Join([]string{
		"┌───────┬───┐",
		"│       │0:2│",
		"│  0:0  ├───┤",
		"│       │1:2│",
		"└───────┴───┘",
	}, "\n")
	if got := canvas.Plain(); got != want {
		t.Fatalf("unexpected canvas\n%s\nwant\n%s", got, want)
	}
}

// TestRenderRowGroup verifies a vertical group joins borders with tee junctions.
func TestRenderRowGroup(t *testing.T) {
	g := domain.BuildGrid(2, 2, nil)
	if err := g.Merge(sel(0, 1, 1, 1)); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	canvas := Render(domain.BuildLayout(g, nil), plainOptions(3))
	want := strings.Join([]string{
		"┌───┬───┐",
		"│0:0│   │",
		"├───┤0:1│",
		"│1:0│   │",
		"└───┴───┘",
	}, "\n")
	if got := canvas.Plain(); got != want {
		t.Fatalf("unexpected canvas\n%s\nwant\n%s", got, want)
	}
}

// TestRenderWithoutLabels verifies labels can be hidden.
func TestRenderWithoutLabels(t *testing.T) {
	opts := plainOptions(3)
	opts.ShowLabels = false
	canvas := Render(domain.BuildLayout(domain.BuildGrid(1, 1, nil), nil), opts)
	want := "┌───┐\n│   │\n└───┘"
	if got := canvas.Plain(); got != want {
		t.Fatalf("unexpected canvas\n%s\nwant\n%s", got, want)
	}
}

// TestRenderEmptyLayout verifies empty grids render nothing.
func TestRenderEmptyLayout(t *testing.T) {
	canvas := Render(domain.BuildLayout(domain.BuildGrid(0, 3, nil), nil), DefaultOptions())
	if canvas.Plain() != "" || canvas.String() != "" {
		t.Fatalf("expected empty canvas, got %q", canvas.Plain())
	}
	if _, ok := canvas.CellAt(1, 1); ok {
		t.Fatal("expected no hit on an empty canvas")
	}
}

// TestRenderStyledKeepsText verifies styling never changes the visible text.
func TestRenderStyledKeepsText(t *testing.T) {
	g := domain.BuildGrid(3, 3, nil)
	selection := sel(0, 0, 1, 1)
	canvas := Render(domain.BuildLayout(g, &selection), DefaultOptions())
	styled := canvas.String()
	for _, label := range []string{"0:0", "1:1", "2:2"} {
		if !strings.Contains(styled, label) {
			t.Fatalf("expected styled output to contain %q", label)
		}
	}
	if strings.Count(canvas.Plain(), "\n") != strings.Count(styled, "\n") {
		t.Fatal("expected styled and plain output to have the same line count")
	}
}

// TestCellAt verifies screen offsets map back to logical cells.
func TestCellAt(t *testing.T) {
	canvas := Render(domain.BuildLayout(domain.BuildGrid(3, 2, nil), nil), plainOptions(3))
	cases := []struct {
		x, y int
		want domain.Coord
		ok   bool
	}{
		{x: 1, y: 1, want: domain.Coord{Row: 0, Col: 0}, ok: true},
		{x: 3, y: 1, want: domain.Coord{Row: 0, Col: 0}, ok: true},
		{x: 4, y: 1, want: domain.Coord{Row: 0, Col: 0}, ok: true},
		{x: 5, y: 1, want: domain.Coord{Row: 0, Col: 1}, ok: true},
		{x: 11, y: 3, want: domain.Coord{Row: 1, Col: 2}, ok: true},
		{x: 6, y: 2, want: domain.Coord{Row: 0, Col: 1}, ok: true},
		{x: 0, y: 1, ok: false},
		{x: 1, y: 0, ok: false},
		{x: 12, y: 1, ok: false},
		{x: 1, y: 4, ok: false},
		{x: 40, y: 40, ok: false},
	}
	for _, tc := range cases {
		got, ok := canvas.CellAt(tc.x, tc.y)
		if ok != tc.ok {
			t.Fatalf("CellAt(%d,%d) ok = %t, want %t", tc.x, tc.y, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("CellAt(%d,%d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}
