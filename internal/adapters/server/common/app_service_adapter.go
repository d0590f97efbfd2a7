package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/mergegrid/internal/app"
	"github.com/hylla/mergegrid/internal/domain"
	"github.com/hylla/mergegrid/internal/rangeref"
)

// AppServiceAdapter maps transport contracts onto app.Service.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// State returns the current grid snapshot.
func (a *AppServiceAdapter) State(ctx context.Context) (GridState, error) {
	if err := a.ready(); err != nil {
		return GridState{}, err
	}
	state, err := a.service.State(ctx)
	if err != nil {
		return GridState{}, mapAppError("state", err)
	}
	return state, nil
}

// Pointer applies one pointer transition.
func (a *AppServiceAdapter) Pointer(ctx context.Context, in PointerRequest) (GridState, error) {
	if err := a.ready(); err != nil {
		return GridState{}, err
	}
	state, err := a.service.Pointer(ctx, app.PointerEvent{
		Type: app.PointerEventType(strings.TrimSpace(in.Type)),
		Cell: domain.Coord{Row: in.Row, Col: in.Col},
	})
	if err != nil {
		return GridState{}, mapAppError("pointer", err)
	}
	return state, nil
}

// Select selects a range given as A1 notation or as two corners.
func (a *AppServiceAdapter) Select(ctx context.Context, in SelectRequest) (GridState, error) {
	if err := a.ready(); err != nil {
		return GridState{}, err
	}
	from, to, err := resolveSelectRequest(in)
	if err != nil {
		return GridState{}, err
	}
	state, err := a.service.Select(ctx, from, to)
	if err != nil {
		return GridState{}, mapAppError("select", err)
	}
	return state, nil
}

// Merge merges the current selection.
func (a *AppServiceAdapter) Merge(ctx context.Context) (GridState, error) {
	if err := a.ready(); err != nil {
		return GridState{}, err
	}
	state, err := a.service.Merge(ctx)
	if err != nil {
		return GridState{}, mapAppError("merge", err)
	}
	return state, nil
}

// Separate separates merged cells in the current selection.
func (a *AppServiceAdapter) Separate(ctx context.Context) (GridState, error) {
	if err := a.ready(); err != nil {
		return GridState{}, err
	}
	state, err := a.service.Separate(ctx)
	if err != nil {
		return GridState{}, mapAppError("separate", err)
	}
	return state, nil
}

// Clear drops the current selection.
func (a *AppServiceAdapter) Clear(ctx context.Context) (GridState, error) {
	if err := a.ready(); err != nil {
		return GridState{}, err
	}
	state, err := a.service.Clear(ctx)
	if err != nil {
		return GridState{}, mapAppError("clear", err)
	}
	return state, nil
}

// Reset replaces the grid with a fresh one.
func (a *AppServiceAdapter) Reset(ctx context.Context, in ResetRequest) (GridState, error) {
	if err := a.ready(); err != nil {
		return GridState{}, err
	}
	state, err := a.service.Reset(ctx, in.Width, in.Height)
	if err != nil {
		return GridState{}, mapAppError("reset", err)
	}
	return state, nil
}

// Events lists recent activity, newest last.
func (a *AppServiceAdapter) Events(ctx context.Context, limit int) ([]ChangeEvent, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, fmt.Errorf("events: limit must be >= 0: %w", ErrInvalidRequest)
	}
	events, err := a.service.Events(ctx, limit)
	if err != nil {
		return nil, mapAppError("events", err)
	}
	return events, nil
}

// ready reports whether the adapter has a backing service.
func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrServiceUnavailable)
	}
	return nil
}

// resolveSelectRequest validates a select request and returns its two corners.
func resolveSelectRequest(in SelectRequest) (domain.Coord, domain.Coord, error) {
	raw := strings.TrimSpace(in.Range)
	switch {
	case raw != "" && (in.From != nil || in.To != nil):
		return domain.Coord{}, domain.Coord{}, fmt.Errorf("select: range and from/to are mutually exclusive: %w", ErrInvalidRequest)
	case raw != "":
		sel, err := rangeref.Parse(raw)
		if err != nil {
			return domain.Coord{}, domain.Coord{}, fmt.Errorf("select: %w", errors.Join(ErrInvalidRequest, err))
		}
		return sel.From, sel.To, nil
	case in.From != nil && in.To != nil:
		return domain.Coord{Row: in.From.Row, Col: in.From.Col}, domain.Coord{Row: in.To.Row, Col: in.To.Col}, nil
	case in.From != nil:
		from := domain.Coord{Row: in.From.Row, Col: in.From.Col}
		return from, from, nil
	default:
		return domain.Coord{}, domain.Coord{}, fmt.Errorf("select: range or from is required: %w", ErrInvalidRequest)
	}
}

// mapAppError maps app and domain errors onto transport sentinels, keeping the cause.
func mapAppError(operation string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", operation, err)
	case errors.Is(err, domain.ErrNoSelection):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNoSelection, err))
	case errors.Is(err, domain.ErrNotMergeClosed):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrConflict, err))
	case errors.Is(err, domain.ErrOutOfBounds),
		errors.Is(err, app.ErrInvalidPointerEvent),
		errors.Is(err, app.ErrInvalidDimensions),
		errors.Is(err, rangeref.ErrInvalidRange):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
