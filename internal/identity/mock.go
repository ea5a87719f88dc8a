package identity

import (
	"context"
	"strings"

	"ridelink/internal/models"

	"github.com/google/uuid"
)

// MockProvider accepts any credentials and fabricates a deterministic
// user record, matching the simulated backend the mobile app shipped
// with. A real deployment swaps in LocalProvider or a network-backed
// implementation.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	return &models.User{
		ID:    deterministicID(email),
		Email: email,
		Name:  displayNameFor(email),
	}, nil
}

func (p *MockProvider) CreateAccount(ctx context.Context, profile Profile, password string) (*models.User, error) {
	return &models.User{
		ID:    deterministicID(profile.Email),
		Email: profile.Email,
		Name:  profile.Name,
	}, nil
}

// deterministicID derives a stable ID from the email so repeated
// sign-ins resolve to the same fabricated principal.
func deterministicID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.ToLower(email))).String()
}

func displayNameFor(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return "John Doe"
	}
	return local
}
