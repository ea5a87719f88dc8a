package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider charges through Stripe payment intents.
type StripeProvider struct {
	client *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeProvider{
		client: sc,
	}
}

func (s *StripeProvider) Charge(ctx context.Context, request *ChargeRequest) (*ChargeResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(request.Amount * 100)), // Convert to cents
		Currency:      stripe.String(request.Currency),
		PaymentMethod: stripe.String(request.Reference),
		Description:   stripe.String(request.Description),
		Confirm:       stripe.Bool(true),
	}

	for key, value := range request.Metadata {
		params.AddMetadata(key, value)
	}

	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if pi.Status == stripe.PaymentIntentStatusCanceled ||
		pi.Status == stripe.PaymentIntentStatusRequiresPaymentMethod {
		return nil, ErrDeclined
	}

	return &ChargeResponse{
		TransactionID: pi.ID,
		Status:        string(pi.Status),
		Amount:        float64(pi.Amount) / 100,
		Currency:      string(pi.Currency),
		CreatedAt:     pi.Created,
	}, nil
}
