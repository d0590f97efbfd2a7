// Package rangeref converts grid selections to and from spreadsheet A1 notation.
package rangeref

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/mergegrid/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ErrInvalidRange reports malformed A1 range input.
var ErrInvalidRange = errors.New("invalid range")

// CellName formats one zero-based coordinate as an A1 cell name.
func CellName(c domain.Coord) (string, error) {
	name, err := excelize.CoordinatesToCellName(c.Col+1, c.Row+1)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return name, nil
}

// Format renders a selection as "A1:B2", or "A1" for a single cell.
func Format(sel domain.Selection) (string, error) {
	from, err := CellName(sel.From)
	if err != nil {
		return "", err
	}
	if sel.Single() {
		return from, nil
	}
	to, err := CellName(sel.To)
	if err != nil {
		return "", err
	}
	return from + ":" + to, nil
}

// MustFormat renders a selection and falls back to row/col notation when it cannot be named.
func MustFormat(sel domain.Selection) string {
	out, err := Format(sel)
	if err != nil {
		return sel.String()
	}
	return out
}

// Parse reads "A1:B2" or "C3" into a canonical zero-based selection.
//
// Corners may be given in any order; absolute markers ($A$1) are accepted.
func Parse(raw string) (domain.Selection, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Selection{}, fmt.Errorf("%w: empty", ErrInvalidRange)
	}
	parts := strings.Split(raw, ":")
	if len(parts) > 2 {
		return domain.Selection{}, fmt.Errorf("%w: %q", ErrInvalidRange, raw)
	}
	first, err := parseCell(parts[0])
	if err != nil {
		return domain.Selection{}, err
	}
	second := first
	if len(parts) == 2 {
		second, err = parseCell(parts[1])
		if err != nil {
			return domain.Selection{}, err
		}
	}
	return domain.NewSelection(first, second), nil
}

// parseCell reads one A1 cell name into a zero-based coordinate.
func parseCell(raw string) (domain.Coord, error) {
	name := strings.ReplaceAll(strings.TrimSpace(raw), "$", "")
	col, row, err := excelize.CellNameToCoordinates(strings.ToUpper(name))
	if err != nil {
		return domain.Coord{}, fmt.Errorf("%w: %q: %v", ErrInvalidRange, raw, err)
	}
	return domain.Coord{Row: row - 1, Col: col - 1}, nil
}
