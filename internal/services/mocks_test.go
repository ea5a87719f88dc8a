package services

import (
	"context"
	"errors"
	"sync/atomic"

	"ridelink/internal/identity"
	"ridelink/internal/models"
	"ridelink/pkg/keyvalue"
	"ridelink/pkg/payment"
)

// flakyStore wraps a real memory store with per-operation error
// injection for failure-path tests.
type flakyStore struct {
	inner *keyvalue.MemoryStore

	GetError    error
	SetError    error
	RemoveError error

	SetCallCount int32
}

func newFlakyStore() *flakyStore {
	return &flakyStore{inner: keyvalue.NewMemoryStore()}
}

func (s *flakyStore) Get(ctx context.Context, key string) (string, error) {
	if s.GetError != nil {
		return "", s.GetError
	}
	return s.inner.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key, value string) error {
	atomic.AddInt32(&s.SetCallCount, 1)
	if s.SetError != nil {
		return s.SetError
	}
	return s.inner.Set(ctx, key, value)
}

func (s *flakyStore) Remove(ctx context.Context, key string) error {
	if s.RemoveError != nil {
		return s.RemoveError
	}
	return s.inner.Remove(ctx, key)
}

// stubProvider is an identity collaborator with programmable outcomes.
type stubProvider struct {
	AuthenticateError error
	CreateError       error
	User              *models.User
}

func (p *stubProvider) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if p.AuthenticateError != nil {
		return nil, p.AuthenticateError
	}
	if p.User != nil {
		user := *p.User
		return &user, nil
	}
	return &models.User{ID: "user-1", Email: email, Name: "Test User"}, nil
}

func (p *stubProvider) CreateAccount(ctx context.Context, profile identity.Profile, password string) (*models.User, error) {
	if p.CreateError != nil {
		return nil, p.CreateError
	}
	return &models.User{ID: "user-new", Email: profile.Email, Name: profile.Name}, nil
}

// stubGateway approves or declines every charge.
type stubGateway struct {
	Decline     bool
	ChargeError error

	ChargeCallCount int32
}

func (g *stubGateway) Charge(ctx context.Context, request *payment.ChargeRequest) (*payment.ChargeResponse, error) {
	atomic.AddInt32(&g.ChargeCallCount, 1)
	if g.ChargeError != nil {
		return nil, g.ChargeError
	}
	if g.Decline {
		return nil, payment.ErrDeclined
	}
	return &payment.ChargeResponse{
		TransactionID: "TRX-test",
		Status:        "completed",
		Amount:        request.Amount,
		Currency:      request.Currency,
	}, nil
}

var errInjected = errors.New("injected failure")
