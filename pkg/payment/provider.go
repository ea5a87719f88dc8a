// Package payment abstracts the payment gateway behind a small
// Provider interface so the simulated gateway used in development can
// be swapped for Stripe or Razorpay without touching the payment
// service.
package payment

import (
	"context"
	"errors"
)

// ErrDeclined is returned when the gateway rejects the charge. It is
// recoverable; the caller is expected to offer a retry or another
// instrument.
var ErrDeclined = errors.New("payment declined")

type Provider interface {
	Charge(ctx context.Context, request *ChargeRequest) (*ChargeResponse, error)
}

type ChargeRequest struct {
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Reference   string            `json:"reference"` // saved card ID
	Metadata    map[string]string `json:"metadata"`
}

type ChargeResponse struct {
	TransactionID string  `json:"transaction_id"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	CreatedAt     int64   `json:"created_at"`
}
