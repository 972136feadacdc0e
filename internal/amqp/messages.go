package amqp

import (
	"encoding/json"
	"fmt"

	"finance/internal/core"
)

// EncodeTransactionEvent converts the event to JSON bytes
func EncodeTransactionEvent(ev core.TransactionEvent) ([]byte, error) {
	return json.Marshal(ev)
}

// DecodeTransactionEvent parses a message body and rejects events missing
// what their type requires.
func DecodeTransactionEvent(data []byte) (core.TransactionEvent, error) {
	var ev core.TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return core.TransactionEvent{}, err
	}
	if !ev.Valid() {
		return core.TransactionEvent{}, fmt.Errorf("invalid %q event for transaction %q", ev.Type, ev.ID)
	}
	return ev, nil
}
