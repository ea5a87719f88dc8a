package payment

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// SimulatedProvider stands in for a real gateway: it waits a fixed
// latency and then approves the charge with a configurable probability
// (0.9 matches the behavior the mobile app simulated). Charges are not
// cancellable once started; an abandoned caller still completes.
type SimulatedProvider struct {
	successRate float64
	latency     time.Duration

	// Injection points for tests.
	random func() float64
	sleep  func(time.Duration)
}

func NewSimulatedProvider(successRate float64, latency time.Duration) *SimulatedProvider {
	if successRate < 0 || successRate > 1 {
		successRate = 0.9
	}
	return &SimulatedProvider{
		successRate: successRate,
		latency:     latency,
		random:      secureRandomFloat,
		sleep:       time.Sleep,
	}
}

func (p *SimulatedProvider) Charge(ctx context.Context, request *ChargeRequest) (*ChargeResponse, error) {
	p.sleep(p.latency)

	if p.random() >= p.successRate {
		return nil, ErrDeclined
	}

	now := time.Now()
	return &ChargeResponse{
		TransactionID: fmt.Sprintf("TRX%d", now.UnixMilli()),
		Status:        "completed",
		Amount:        request.Amount,
		Currency:      request.Currency,
		CreatedAt:     now.Unix(),
	}, nil
}

func secureRandomFloat() float64 {
	max := big.NewInt(1 << 53)
	n, _ := rand.Int(rand.Reader, max)
	return float64(n.Int64()) / float64(1<<53)
}
