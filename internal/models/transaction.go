package models

import "time"

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an append-only audit record of a processed payment.
// CardID is nil for cash payments, which are never recorded.
type Transaction struct {
	ID        string            `json:"id"`
	Amount    float64           `json:"amount"`
	CardID    *string           `json:"card_id"`
	Timestamp time.Time         `json:"timestamp"`
	Status    TransactionStatus `json:"status"`
}
