package events

import (
	"encoding/json"
	"time"
)

// TransactionPostedMessage announces a newly posted ledger entry.
type TransactionPostedMessage struct {
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	AccountID     string    `json:"account_id"`
	CategoryID    string    `json:"category_id"`
	Type          string    `json:"type"`
	AmountCents   int64     `json:"amount_cents"`
	Timestamp     time.Time `json:"timestamp"`
}

// BudgetBreachedMessage announces that a budget's cumulative spend crossed
// its ceiling. Consumers decide what, if anything, to do with it; the API
// itself never delivers notifications anywhere.
type BudgetBreachedMessage struct {
	BudgetID      string    `json:"budget_id"`
	UserID        string    `json:"user_id"`
	CategoryID    string    `json:"category_id"`
	ExceededCents int64     `json:"exceeded_cents"`
	Timestamp     time.Time `json:"timestamp"`
}

func (m *TransactionPostedMessage) ToJSON() ([]byte, error) { return json.Marshal(m) }
func (m *BudgetBreachedMessage) ToJSON() ([]byte, error)    { return json.Marshal(m) }

func TransactionPostedFromJSON(data []byte) (*TransactionPostedMessage, error) {
	var msg TransactionPostedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func BudgetBreachedFromJSON(data []byte) (*BudgetBreachedMessage, error) {
	var msg BudgetBreachedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
