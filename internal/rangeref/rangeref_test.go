package rangeref

import (
	"errors"
	"testing"

	"github.com/hylla/mergegrid/internal/domain"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		name string
		sel  domain.Selection
		want string
	}{
		{"single", domain.Selection{From: domain.Coord{Row: 2, Col: 2}, To: domain.Coord{Row: 2, Col: 2}}, "C3"},
		{"block", domain.Selection{From: domain.Coord{}, To: domain.Coord{Row: 1, Col: 1}}, "A1:B2"},
		{"wide columns", domain.Selection{From: domain.Coord{Row: 0, Col: 25}, To: domain.Coord{Row: 9, Col: 27}}, "Z1:AB10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Format(tc.sel)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("Format() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatRejectsNegative(t *testing.T) {
	_, err := Format(domain.Selection{From: domain.Coord{Row: -1}, To: domain.Coord{}})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if got := MustFormat(domain.Selection{From: domain.Coord{Row: -1}}); got != "(-1,0)-(0,0)" {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.Selection
	}{
		{"A1:B2", domain.Selection{From: domain.Coord{}, To: domain.Coord{Row: 1, Col: 1}}},
		{" b2:a1 ", domain.Selection{From: domain.Coord{}, To: domain.Coord{Row: 1, Col: 1}}},
		{"C3", domain.Selection{From: domain.Coord{Row: 2, Col: 2}, To: domain.Coord{Row: 2, Col: 2}}},
		{"$A$1:$C$2", domain.Selection{From: domain.Coord{}, To: domain.Coord{Row: 1, Col: 2}}},
		{"B3:C1", domain.Selection{From: domain.Coord{Row: 0, Col: 1}, To: domain.Coord{Row: 2, Col: 2}}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.raw)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, raw := range []string{"", "A1:B2:C3", "11", "A0", ":"} {
		if _, err := Parse(raw); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("Parse(%q) expected ErrInvalidRange, got %v", raw, err)
		}
	}
}
