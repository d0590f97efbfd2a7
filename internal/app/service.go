package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hylla/mergegrid/internal/domain"
	"github.com/hylla/mergegrid/internal/rangeref"
)

// defaultEventLimit bounds the in-memory activity ledger.
const defaultEventLimit = 200

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	Width      int
	Height     int
	MaxWidth   int
	MaxHeight  int
	EventLimit int
}

// IDGenerator returns unique identifiers for new cells.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// PointerEventType names one pointer transition.
type PointerEventType string

// PointerDown and related constants are the accepted pointer transitions.
const (
	PointerDown PointerEventType = "down"
	PointerMove PointerEventType = "move"
	PointerUp   PointerEventType = "up"
)

// PointerEvent is one pointer transition over a logical cell.
type PointerEvent struct {
	Type PointerEventType `json:"type"`
	Cell domain.Coord     `json:"cell"`
}

// State is a consistent snapshot of the session grid and its selection.
type State struct {
	Width        int                `json:"width"`
	Height       int                `json:"height"`
	Pointer      string             `json:"pointer"`
	Selection    *domain.Selection  `json:"selection,omitempty"`
	Range        string             `json:"range,omitempty"`
	CanMerge     bool               `json:"can_merge"`
	CanSeparate  bool               `json:"can_separate"`
	TouchesGroup bool               `json:"touches_group"`
	Groups       []domain.Selection `json:"groups"`
	Layout       domain.Layout      `json:"layout"`
}

// Service serializes access to one interaction controller for concurrent transports.
type Service struct {
	mu          sync.Mutex
	ctrl        *Controller
	clock       Clock
	logger      Logger
	maxWidth    int
	maxHeight   int
	eventLimit  int
	events      []domain.ChangeEvent
	nextEventID int64
}

// NewService constructs a new value for this package.
func NewService(idGen IDGenerator, clock Clock, logger Logger, cfg ServiceConfig) *Service {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = nopLogger{}
	}
	if cfg.EventLimit <= 0 {
		cfg.EventLimit = defaultEventLimit
	}
	var newKey domain.KeyFunc
	if idGen != nil {
		newKey = domain.KeyFunc(idGen)
	}
	s := &Service{
		clock:      clock,
		logger:     logger,
		maxWidth:   cfg.MaxWidth,
		maxHeight:  cfg.MaxHeight,
		eventLimit: cfg.EventLimit,
	}
	width, height := s.clampDimensions(cfg.Width, cfg.Height)
	s.ctrl = NewController(width, height, newKey)
	return s
}

// State returns the current snapshot.
func (s *Service) State(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// Pointer applies one pointer transition; events over cells outside the grid are ignored.
func (s *Service) Pointer(ctx context.Context, ev PointerEvent) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch PointerEventType(strings.ToLower(strings.TrimSpace(string(ev.Type)))) {
	case PointerDown:
		if !s.ctrl.PointerDown(ev.Cell) {
			s.logger.Debug("pointer down ignored", "row", ev.Cell.Row, "col", ev.Cell.Col)
		}
	case PointerMove:
		s.ctrl.PointerMove(ev.Cell)
	case PointerUp:
		if s.ctrl.PointerUp() {
			if sel, ok := s.ctrl.Selection(); ok {
				s.recordLocked(domain.ChangeOperationSelect, &sel)
			}
		}
	default:
		return State{}, fmt.Errorf("%w: %q", ErrInvalidPointerEvent, ev.Type)
	}
	return s.snapshotLocked(), nil
}

// Select performs a complete drag gesture between two corners.
func (s *Service) Select(ctx context.Context, a, b domain.Coord) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, err := s.ctrl.SelectRange(a, b)
	if err != nil {
		return State{}, err
	}
	s.recordLocked(domain.ChangeOperationSelect, &sel)
	return s.snapshotLocked(), nil
}

// Merge merges the current selection into one cell.
func (s *Service) Merge(ctx context.Context) (State, error) {
	return s.applyAction(ctx, domain.ChangeOperationMerge, (*Controller).MergeCells)
}

// Separate splits every merge group in the current selection.
func (s *Service) Separate(ctx context.Context) (State, error) {
	return s.applyAction(ctx, domain.ChangeOperationSeparate, (*Controller).SeparateCells)
}

// applyAction runs one merge/separate transition under the service lock.
func (s *Service) applyAction(ctx context.Context, op domain.ChangeOperation, action func(*Controller) (domain.Selection, error)) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, err := action(s.ctrl)
	if err != nil {
		s.logger.Warn("grid action rejected", "operation", op, "err", err)
		return State{}, err
	}
	s.recordLocked(op, &sel)
	s.logger.Info("grid action applied", "operation", op, "range", rangeref.MustFormat(sel))
	return s.snapshotLocked(), nil
}

// Clear drops the current selection.
func (s *Service) Clear(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.ClearSelection()
	s.recordLocked(domain.ChangeOperationClear, nil)
	return s.snapshotLocked(), nil
}

// Reset replaces the session grid with a fresh one of the requested size.
func (s *Service) Reset(ctx context.Context, width, height int) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	if width < 0 || height < 0 {
		return State{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	width, height = s.clampDimensions(width, height)
	s.ctrl.Reset(width, height)
	s.recordLocked(domain.ChangeOperationReset, nil)
	s.logger.Info("grid reset", "width", width, "height", height)
	return s.snapshotLocked(), nil
}

// Events returns up to limit recent events, newest last.
func (s *Service) Events(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return append([]domain.ChangeEvent(nil), events...), nil
}

// recordLocked appends one event to the bounded ledger.
func (s *Service) recordLocked(op domain.ChangeOperation, sel *domain.Selection) {
	s.nextEventID++
	grid := s.ctrl.Grid()
	s.events = append(s.events, domain.NewChangeEvent(s.nextEventID, op, sel, grid.Width(), grid.Height(), s.clock()))
	if overflow := len(s.events) - s.eventLimit; overflow > 0 {
		s.events = append([]domain.ChangeEvent(nil), s.events[overflow:]...)
	}
}

// snapshotLocked builds a State from the controller.
func (s *Service) snapshotLocked() State {
	return Snapshot(s.ctrl)
}

// clampDimensions caps requested dimensions at the configured maxima.
func (s *Service) clampDimensions(width, height int) (int, int) {
	if s.maxWidth > 0 && width > s.maxWidth {
		width = s.maxWidth
	}
	if s.maxHeight > 0 && height > s.maxHeight {
		height = s.maxHeight
	}
	return width, height
}

// Snapshot builds a State from a controller.
func Snapshot(ctrl *Controller) State {
	grid := ctrl.Grid()
	out := State{
		Width:        grid.Width(),
		Height:       grid.Height(),
		Pointer:      ctrl.State().String(),
		CanMerge:     ctrl.CanMerge(),
		CanSeparate:  ctrl.CanSeparate(),
		TouchesGroup: ctrl.TouchesGroup(),
		Groups:       grid.Groups(),
		Layout:       ctrl.Layout(),
	}
	if out.Groups == nil {
		out.Groups = []domain.Selection{}
	}
	if sel, ok := ctrl.Selection(); ok {
		out.Selection = &sel
		out.Range = rangeref.MustFormat(sel)
	}
	return out
}
