package events

import (
	"encoding/json"
	"fmt"
	"time"

	"dompet/internal/models"
)

// Action is the kind of write that produced an event.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// TransactionEvent announces a committed transaction write. Consumers re-read
// what they need from the database; the payload only routes the work.
type TransactionEvent struct {
	Action        Action                 `json:"action"`
	TransactionID string                 `json:"transaction_id"`
	UserID        string                 `json:"user_id"`
	AccountID     string                 `json:"account_id"`
	CategoryID    *string                `json:"category_id,omitempty"`
	Type          models.TransactionType `json:"type"`
	Amount        int64                  `json:"amount"`
	Date          string                 `json:"date"`
	Timestamp     time.Time              `json:"timestamp"`
}

// NewTransactionEvent builds an event for txn.
func NewTransactionEvent(action Action, txn *models.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Action:        action,
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		AccountID:     txn.AccountID,
		CategoryID:    txn.CategoryID,
		Type:          txn.Type,
		Amount:        txn.Amount,
		Date:          txn.Date.Format("2006-01-02"),
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and sanity-checks an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return nil, fmt.Errorf("unknown action %q", e.Action)
	}
	if e.UserID == "" || e.TransactionID == "" {
		return nil, fmt.Errorf("event is missing user or transaction id")
	}
	return &e, nil
}

// ParsedDate returns the transaction's calendar day.
func (e *TransactionEvent) ParsedDate() (time.Time, error) {
	return time.Parse("2006-01-02", e.Date)
}
