package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ridelink/internal/identity"
	"ridelink/internal/models"
	"ridelink/pkg/keyvalue"
	"ridelink/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// sessionKey holds the consolidated session record. The mobile app
	// wrote three separate keys with no atomicity between them; a single
	// record closes that partial-write window.
	sessionKey = "session"

	// Legacy keys, read once on restore to migrate old installs.
	legacyTokenKey    = "authToken"
	legacyRoleKey     = "userType"
	legacyUserDataKey = "userData"
)

type AuthService interface {
	// Restore reads the persisted session at process start. Idempotent:
	// once the session is ready, further calls are no-ops. Storage
	// failures degrade to the unauthenticated state.
	Restore(ctx context.Context)

	// SignIn authenticates against the identity provider and persists
	// the session. State is untouched on failure.
	SignIn(ctx context.Context, email, password string, role models.UserRole) (*models.User, error)

	// Register creates a new identity and signs it in.
	Register(ctx context.Context, profile identity.Profile, password string, role models.UserRole) (*models.User, error)

	// SignOut clears the persisted session and resets memory. It always
	// succeeds from the caller's perspective.
	SignOut(ctx context.Context)

	// UpdateProfile merges non-empty fields into the signed-in user
	// record and persists the result.
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error)

	// Session returns a snapshot of the current state.
	Session() models.Session

	// Token returns the persisted session token, or ErrNotAuthenticated
	// when no session is stored.
	Token(ctx context.Context) (string, error)

	// Subscribe registers a listener invoked on every state change. The
	// returned function unsubscribes.
	Subscribe(listener func(models.Session)) func()

	// ValidateToken parses and verifies a session token.
	ValidateToken(token string) (*TokenClaims, error)
}

type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TokenClaims struct {
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// persistedSession is the single JSON record written under sessionKey.
type persistedSession struct {
	Token string          `json:"token"`
	Role  models.UserRole `json:"role"`
	User  *models.User    `json:"user"`
}

type authService struct {
	store     keyvalue.Store
	provider  identity.Provider
	jwtSecret string
	tokenTTL  time.Duration
	logger    *logger.Logger

	mu        sync.Mutex
	session   models.Session
	listeners map[int]func(models.Session)
	nextID    int
}

func NewAuthService(
	store keyvalue.Store,
	provider identity.Provider,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *logger.Logger,
) AuthService {
	return &authService{
		store:     store,
		provider:  provider,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
		session: models.Session{
			Status: models.SessionStatusInitializing,
		},
		listeners: make(map[int]func(models.Session)),
	}
}

func (s *authService) Restore(ctx context.Context) {
	s.mu.Lock()

	if s.session.Status == models.SessionStatusReady {
		s.mu.Unlock()
		return
	}

	restored := s.readPersisted(ctx)
	s.session = models.Session{
		Status: models.SessionStatusReady,
	}
	if restored != nil {
		s.session.User = restored.User
		s.session.Role = restored.Role
	}
	snapshot := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
}

// readPersisted loads the consolidated record, falling back to the
// legacy three-key layout. Returns nil when nothing usable is stored.
func (s *authService) readPersisted(ctx context.Context) *persistedSession {
	raw, err := s.store.Get(ctx, sessionKey)
	if err == nil {
		var record persistedSession
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			s.logger.WithError(err).Warn("Stored session is corrupt, starting unauthenticated")
			return nil
		}
		return &record
	}
	if !errors.Is(err, keyvalue.ErrKeyNotFound) {
		s.logger.WithError(err).Warn("Failed to read stored session, starting unauthenticated")
		return nil
	}

	return s.readLegacy(ctx)
}

func (s *authService) readLegacy(ctx context.Context) *persistedSession {
	token, err := s.store.Get(ctx, legacyTokenKey)
	if err != nil {
		if !errors.Is(err, keyvalue.ErrKeyNotFound) {
			s.logger.WithError(err).Warn("Failed to read legacy session, starting unauthenticated")
		}
		return nil
	}
	role, err := s.store.Get(ctx, legacyRoleKey)
	if err != nil {
		return nil
	}

	record := &persistedSession{
		Token: token,
		Role:  models.UserRole(role),
	}
	if userData, err := s.store.Get(ctx, legacyUserDataKey); err == nil {
		var user models.User
		if err := json.Unmarshal([]byte(userData), &user); err == nil {
			record.User = &user
		}
	}

	s.migrateLegacy(ctx, record)
	return record
}

// migrateLegacy rewrites the legacy keys as one consolidated record.
// Best effort: the legacy keys remain authoritative if this fails.
func (s *authService) migrateLegacy(ctx context.Context, record *persistedSession) {
	if err := s.writePersisted(ctx, record); err != nil {
		s.logger.WithError(err).Warn("Failed to migrate legacy session record")
		return
	}
	for _, key := range []string{legacyTokenKey, legacyRoleKey, legacyUserDataKey} {
		if err := s.store.Remove(ctx, key); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to remove legacy session key")
		}
	}
}

func (s *authService) SignIn(ctx context.Context, email, password string, role models.UserRole) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	s.mu.Lock()

	if s.session.User != nil {
		s.mu.Unlock()
		return nil, ErrAlreadyAuthenticated
	}

	user, err := s.provider.Authenticate(ctx, email, password)
	if err != nil {
		s.mu.Unlock()
		s.logger.WithField("email", email).Warn("Sign-in rejected by identity provider")
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	snapshot, listeners, err := s.establishLocked(ctx, user, role)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	notify(listeners, snapshot)
	s.logger.LogSessionEvent(user.ID, "sign_in")
	return user, nil
}

func (s *authService) Register(ctx context.Context, profile identity.Profile, password string, role models.UserRole) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	s.mu.Lock()

	if s.session.User != nil {
		s.mu.Unlock()
		return nil, ErrAlreadyAuthenticated
	}

	user, err := s.provider.CreateAccount(ctx, profile, password)
	if err != nil {
		s.mu.Unlock()
		s.logger.WithField("email", profile.Email).Warn("Registration rejected by identity provider")
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	snapshot, listeners, err := s.establishLocked(ctx, user, role)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	notify(listeners, snapshot)
	s.logger.LogSessionEvent(user.ID, "register")
	return user, nil
}

// establishLocked persists the new session and then updates memory, so
// a storage failure leaves the in-memory state untouched. Caller holds
// the mutex.
func (s *authService) establishLocked(ctx context.Context, user *models.User, role models.UserRole) (models.Session, []func(models.Session), error) {
	token, err := s.mintToken(user, role)
	if err != nil {
		return models.Session{}, nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	record := &persistedSession{
		Token: token,
		Role:  role,
		User:  user,
	}
	if err := s.writePersisted(ctx, record); err != nil {
		s.logger.WithError(err).Error("Failed to persist session")
		return models.Session{}, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.session.User = user
	s.session.Role = role
	return s.snapshotLocked(), s.listenersLocked(), nil
}

func (s *authService) SignOut(ctx context.Context) {
	s.mu.Lock()

	for _, key := range []string{sessionKey, legacyTokenKey, legacyRoleKey, legacyUserDataKey} {
		if err := s.store.Remove(ctx, key); err != nil {
			// In-memory state is the source of truth for the rest of
			// the process lifetime, so deletion failures are not
			// surfaced.
			s.logger.WithError(err).WithField("key", key).Warn("Failed to clear session key")
		}
	}

	userID := ""
	if s.session.User != nil {
		userID = s.session.User.ID
	}
	s.session = models.Session{
		Status: models.SessionStatusReady,
	}
	snapshot := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
	if userID != "" {
		s.logger.LogSessionEvent(userID, "sign_out")
	}
}

func (s *authService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error) {
	s.mu.Lock()

	if s.session.User == nil {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}

	updated := *s.session.User
	if update.Name != "" {
		updated.Name = update.Name
	}
	if update.Email != "" {
		updated.Email = update.Email
	}

	token, err := s.currentToken(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	record := &persistedSession{
		Token: token,
		Role:  s.session.Role,
		User:  &updated,
	}
	if err := s.writePersisted(ctx, record); err != nil {
		s.mu.Unlock()
		s.logger.WithError(err).Error("Failed to persist profile update")
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.session.User = &updated
	snapshot := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
	return &updated, nil
}

func (s *authService) currentToken(ctx context.Context) (string, error) {
	raw, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return "", err
	}
	var record persistedSession
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return "", err
	}
	return record.Token, nil
}

func (s *authService) Token(ctx context.Context) (string, error) {
	token, err := s.currentToken(ctx)
	if err != nil {
		if errors.Is(err, keyvalue.ErrKeyNotFound) {
			return "", ErrNotAuthenticated
		}
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

func (s *authService) Session() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *authService) Subscribe(listener func(models.Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = listener

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *authService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *authService) mintToken(user *models.User, role models.UserRole) (string, error) {
	claims := &TokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) writePersisted(ctx context.Context, record *persistedSession) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.store.Set(ctx, sessionKey, string(data))
}

func (s *authService) snapshotLocked() models.Session {
	snapshot := s.session
	if snapshot.User != nil {
		user := *snapshot.User
		snapshot.User = &user
	}
	return snapshot
}

func (s *authService) listenersLocked() []func(models.Session) {
	listeners := make([]func(models.Session), 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	return listeners
}

func notify(listeners []func(models.Session), snapshot models.Session) {
	for _, listener := range listeners {
		listener(snapshot)
	}
}
