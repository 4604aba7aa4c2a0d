package amqp

import (
	"encoding/json"
	"time"

	"paytrack/internal/core"
)

// LedgerChangedMessage announces a committed ledger mutation together with
// the resulting totals of the active month.
type LedgerChangedMessage struct {
	Operation string      `json:"operation"`
	Month     string      `json:"month"`
	Totals    core.Totals `json:"totals"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewLedgerChangedMessage creates a message stamped with at.
func NewLedgerChangedMessage(op, month string, totals core.Totals, at time.Time) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Operation: op,
		Month:     month,
		Totals:    totals,
		Timestamp: at,
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
