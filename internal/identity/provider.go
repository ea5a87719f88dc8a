package identity

import (
	"context"
	"errors"

	"ridelink/internal/models"
)

var (
	// ErrInvalidCredentials is returned when authentication is rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountExists is returned when registering an email that is taken.
	ErrAccountExists = errors.New("account already exists")
)

// Profile carries the fields collected by the registration screens.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Provider is the external identity collaborator. Authenticate verifies
// credentials and returns the user record; CreateAccount provisions a
// new identity. Both keep the same contract shape regardless of whether
// the implementation is the deterministic mock or a real backend.
type Provider interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	CreateAccount(ctx context.Context, profile Profile, password string) (*models.User, error)
}
