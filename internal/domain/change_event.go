package domain

import "time"

// ChangeOperation describes one recorded grid action.
type ChangeOperation string

// ChangeOperation values used by the in-memory activity ledger.
const (
	ChangeOperationSelect   ChangeOperation = "select"
	ChangeOperationClear    ChangeOperation = "clear"
	ChangeOperationMerge    ChangeOperation = "merge"
	ChangeOperationSeparate ChangeOperation = "separate"
	ChangeOperationReset    ChangeOperation = "reset"
)

// ChangeEvent represents a single activity-log entry for the session grid.
type ChangeEvent struct {
	ID         int64           `json:"id"`
	Operation  ChangeOperation `json:"operation"`
	Selection  *Selection      `json:"selection,omitempty"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewChangeEvent constructs an event stamped in UTC.
func NewChangeEvent(id int64, op ChangeOperation, sel *Selection, width, height int, now time.Time) ChangeEvent {
	ev := ChangeEvent{
		ID:         id,
		Operation:  op,
		Width:      width,
		Height:     height,
		OccurredAt: now.UTC(),
	}
	if sel != nil {
		s := *sel
		ev.Selection = &s
	}
	return ev
}
