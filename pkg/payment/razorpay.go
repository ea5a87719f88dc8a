package payment

import (
	"context"
	"fmt"

	"github.com/razorpay/razorpay-go"
)

// RazorpayProvider charges through Razorpay orders. Payments are
// authorized on the client and captured against the order created here.
type RazorpayProvider struct {
	client *razorpay.Client
}

func NewRazorpayProvider(keyID, keySecret string) *RazorpayProvider {
	return &RazorpayProvider{
		client: razorpay.NewClient(keyID, keySecret),
	}
}

func (r *RazorpayProvider) Charge(ctx context.Context, request *ChargeRequest) (*ChargeResponse, error) {
	orderData := map[string]interface{}{
		"amount":   int(request.Amount * 100), // Amount in paise
		"currency": request.Currency,
		"receipt":  request.Reference,
	}

	if len(request.Metadata) > 0 {
		notes := make(map[string]interface{}, len(request.Metadata))
		for key, value := range request.Metadata {
			notes[key] = value
		}
		orderData["notes"] = notes
	}

	order, err := r.client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return &ChargeResponse{
		TransactionID: order["id"].(string),
		Status:        "created",
		Amount:        float64(order["amount"].(int)) / 100,
		Currency:      order["currency"].(string),
		CreatedAt:     int64(order["created_at"].(int)),
	}, nil
}
