package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ridelink/internal/models"
	"ridelink/pkg/keyvalue"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const accountsKey = "accounts"

// LocalProvider keeps real accounts in the key-value store with bcrypt
// password hashes. It preserves the Provider contract of the mock while
// actually rejecting bad credentials.
type LocalProvider struct {
	mu    sync.Mutex
	store keyvalue.Store
}

type storedAccount struct {
	User         models.User `json:"user"`
	PasswordHash string      `json:"password_hash"`
}

func NewLocalProvider(store keyvalue.Store) *LocalProvider {
	return &LocalProvider{store: store}
}

func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	accounts, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	account, ok := accounts[normalizeEmail(email)]
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user := account.User
	return &user, nil
}

func (p *LocalProvider) CreateAccount(ctx context.Context, profile Profile, password string) (*models.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	accounts, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	key := normalizeEmail(profile.Email)
	if _, ok := accounts[key]; ok {
		return nil, ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:    uuid.NewString(),
		Email: profile.Email,
		Name:  profile.Name,
	}

	accounts[key] = storedAccount{
		User:         user,
		PasswordHash: string(hash),
	}

	if err := p.save(ctx, accounts); err != nil {
		return nil, err
	}

	return &user, nil
}

func (p *LocalProvider) load(ctx context.Context) (map[string]storedAccount, error) {
	raw, err := p.store.Get(ctx, accountsKey)
	if err != nil {
		if errors.Is(err, keyvalue.ErrKeyNotFound) {
			return make(map[string]storedAccount), nil
		}
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	accounts := make(map[string]storedAccount)
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts: %w", err)
	}
	return accounts, nil
}

func (p *LocalProvider) save(ctx context.Context, accounts map[string]storedAccount) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}
	return p.store.Set(ctx, accountsKey, string(data))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
