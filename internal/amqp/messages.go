package amqp

import (
	"encoding/json"
	"time"
)

// Event actions carried in transaction messages.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// TransactionEvent notifies consumers that a transaction was recorded or
// removed. It carries enough to audit the change without another fetch.
type TransactionEvent struct {
	Action      string    `json:"action"`
	ID          int64     `json:"id"`
	Date        string    `json:"date,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	CategoryID  int64     `json:"category_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionCreated(id int64, date string, amountCents, categoryID int64) *TransactionEvent {
	return &TransactionEvent{
		Action:      ActionCreated,
		ID:          id,
		Date:        date,
		AmountCents: amountCents,
		CategoryID:  categoryID,
		Timestamp:   time.Now(),
	}
}

func NewTransactionDeleted(id int64) *TransactionEvent {
	return &TransactionEvent{
		Action:    ActionDeleted,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
