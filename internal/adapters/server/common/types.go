// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"

	"github.com/hylla/mergegrid/internal/app"
	"github.com/hylla/mergegrid/internal/domain"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNoSelection reports an action that needs a selection when none exists.
var ErrNoSelection = errors.New("no selection")

// ErrConflict reports an action rejected by the current grid state.
var ErrConflict = errors.New("conflict")

// ErrServiceUnavailable reports a missing backing service.
var ErrServiceUnavailable = errors.New("grid service unavailable")

// GridState is the transport view of one grid session.
type GridState = app.State

// ChangeEvent is one activity ledger entry.
type ChangeEvent = domain.ChangeEvent

// CellRef addresses one cell by zero-based row and column.
type CellRef struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// PointerRequest carries one pointer transition.
type PointerRequest struct {
	Type string `json:"type"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// SelectRequest selects a range either by A1 notation or by two corners.
type SelectRequest struct {
	Range string   `json:"range,omitempty"`
	From  *CellRef `json:"from,omitempty"`
	To    *CellRef `json:"to,omitempty"`
}

// ResetRequest replaces the grid with a fresh one.
type ResetRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GridService is the grid surface shared by the HTTP and MCP transports.
type GridService interface {
	State(context.Context) (GridState, error)
	Pointer(context.Context, PointerRequest) (GridState, error)
	Select(context.Context, SelectRequest) (GridState, error)
	Merge(context.Context) (GridState, error)
	Separate(context.Context) (GridState, error)
	Clear(context.Context) (GridState, error)
	Reset(context.Context, ResetRequest) (GridState, error)
	Events(context.Context, int) ([]ChangeEvent, error)
}
