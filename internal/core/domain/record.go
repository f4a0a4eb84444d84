package domain

import "fmt"

// RecordRef identifies one persisted record by registered type name and
// numeric primary key.
type RecordRef struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

func (r RecordRef) String() string {
	return fmt.Sprintf("%s/%d", r.Type, r.ID)
}

// EventKind says what happened to a record.
type EventKind string

const (
	EventWrite  EventKind = "write"
	EventDelete EventKind = "delete"
)

// MutationEvent is one record change reported by the application.
type MutationEvent struct {
	Kind   EventKind `json:"kind"`
	Record RecordRef `json:"record"`
}

// Validate rejects events that could not have come from a persisted record.
func (e MutationEvent) Validate() error {
	if e.Kind != EventWrite && e.Kind != EventDelete {
		return fmt.Errorf("%w: unknown event kind %q", ErrInvalidInput, e.Kind)
	}
	if e.Record.Type == "" {
		return fmt.Errorf("%w: event record type is empty", ErrInvalidInput)
	}
	if e.Record.ID <= 0 {
		return fmt.Errorf("%w: event record id %d is not positive", ErrInvalidInput, e.Record.ID)
	}
	return nil
}
