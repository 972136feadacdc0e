package core

import "time"

// EventType names a transaction mutation.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// TransactionEvent is published after a successful mutation. Transaction is
// nil for deletions.
type TransactionEvent struct {
	Type        EventType    `json:"type"`
	ID          string       `json:"id"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// NewTransactionEvent builds the event for a mutation of t at the given
// time. Deletions only carry the id.
func NewTransactionEvent(typ EventType, t Transaction, at time.Time) TransactionEvent {
	ev := TransactionEvent{Type: typ, ID: t.ID, Timestamp: at.UTC()}
	if typ != EventDeleted {
		ev.Transaction = &t
	}
	return ev
}

// Valid reports whether the event carries what its type requires.
func (e TransactionEvent) Valid() bool {
	if e.ID == "" {
		return false
	}
	switch e.Type {
	case EventCreated, EventUpdated:
		return e.Transaction != nil && e.Transaction.ID == e.ID
	case EventDeleted:
		return true
	default:
		return false
	}
}
