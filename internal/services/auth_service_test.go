package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"ridelink/internal/identity"
	"ridelink/internal/models"
	"ridelink/pkg/keyvalue"
	"ridelink/pkg/logger"
)

func newTestAuthService(store keyvalue.Store, provider identity.Provider) AuthService {
	return NewAuthService(store, provider, "test-secret", time.Hour, logger.NewNop())
}

func TestRestore_EmptyStoreYieldsUnauthenticated(t *testing.T) {
	service := newTestAuthService(newFlakyStore(), &stubProvider{})

	if got := service.Session().Status; got != models.SessionStatusInitializing {
		t.Fatalf("expected initializing before restore, got %q", got)
	}

	service.Restore(context.Background())

	session := service.Session()
	if session.Status != models.SessionStatusReady {
		t.Errorf("expected ready after restore, got %q", session.Status)
	}
	if session.Authenticated() {
		t.Error("empty store must restore to unauthenticated")
	}
}

func TestRestore_IsIdempotent(t *testing.T) {
	store := newFlakyStore()
	service := newTestAuthService(store, &stubProvider{})
	ctx := context.Background()

	service.Restore(ctx)
	if _, err := service.SignIn(ctx, "jane@example.com", "secret", models.UserRolePassenger); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	// A second restore must not wipe the live session.
	service.Restore(ctx)

	if !service.Session().Authenticated() {
		t.Error("repeated restore clobbered the live session")
	}
}

func TestRestore_DegradesOnStorageFailure(t *testing.T) {
	store := newFlakyStore()
	store.GetError = errInjected
	service := newTestAuthService(store, &stubProvider{})

	service.Restore(context.Background())

	session := service.Session()
	if session.Status != models.SessionStatusReady || session.Authenticated() {
		t.Errorf("storage failure must degrade to ready+unauthenticated, got %+v", session)
	}
}

func TestSignIn_PersistsAcrossRestart(t *testing.T) {
	store := newFlakyStore()
	ctx := context.Background()

	first := newTestAuthService(store, &stubProvider{})
	first.Restore(ctx)
	user, err := first.SignIn(ctx, "jane@example.com", "secret", models.UserRoleDriver)
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	// A fresh service over the same store simulates a process restart.
	second := newTestAuthService(store, &stubProvider{})
	second.Restore(ctx)

	session := second.Session()
	if !session.Authenticated() {
		t.Fatal("restored session should be authenticated")
	}
	if session.User.ID != user.ID || session.Role != models.UserRoleDriver {
		t.Errorf("restored wrong session: %+v", session)
	}
}

func TestSignIn_RejectsUnknownRole(t *testing.T) {
	service := newTestAuthService(newFlakyStore(), &stubProvider{})
	service.Restore(context.Background())

	if _, err := service.SignIn(context.Background(), "jane@example.com", "secret", "admin"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestSignIn_ProviderRejectionLeavesStateUntouched(t *testing.T) {
	store := newFlakyStore()
	provider := &stubProvider{AuthenticateError: identity.ErrInvalidCredentials}
	service := newTestAuthService(store, provider)
	ctx := context.Background()
	service.Restore(ctx)

	_, err := service.SignIn(ctx, "jane@example.com", "wrong", models.UserRolePassenger)
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if service.Session().Authenticated() {
		t.Error("failed sign-in must not authenticate")
	}
	if _, err := store.Get(ctx, "session"); !errors.Is(err, keyvalue.ErrKeyNotFound) {
		t.Error("failed sign-in must not persist a session")
	}
}

func TestSignIn_StorageFailureRollsBack(t *testing.T) {
	store := newFlakyStore()
	store.SetError = errInjected
	service := newTestAuthService(store, &stubProvider{})
	ctx := context.Background()
	service.Restore(ctx)

	_, err := service.SignIn(ctx, "jane@example.com", "secret", models.UserRolePassenger)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if service.Session().Authenticated() {
		t.Error("persistence failure must leave memory unauthenticated")
	}
}

func TestSignIn_WhileAuthenticatedIsRejected(t *testing.T) {
	service := newTestAuthService(newFlakyStore(), &stubProvider{})
	ctx := context.Background()
	service.Restore(ctx)

	if _, err := service.SignIn(ctx, "jane@example.com", "secret", models.UserRolePassenger); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if _, err := service.SignIn(ctx, "other@example.com", "secret", models.UserRoleDriver); !errors.Is(err, ErrAlreadyAuthenticated) {
		t.Errorf("expected ErrAlreadyAuthenticated, got %v", err)
	}
	if service.Session().Role != models.UserRolePassenger {
		t.Error("rejected sign-in must not change the role")
	}
}

func TestRegister_SignsInNewAccount(t *testing.T) {
	service := newTestAuthService(newFlakyStore(), &stubProvider{})
	ctx := context.Background()
	service.Restore(ctx)

	profile := identity.Profile{Name: "Jane Doe", Email: "jane@example.com"}
	user, err := service.Register(ctx, profile, "secret", models.UserRolePassenger)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "jane@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}

	session := service.Session()
	if !session.Authenticated() || session.Role != models.UserRolePassenger {
		t.Errorf("registration should sign the user in, got %+v", session)
	}
}

func TestRegister_ProviderErrorIsWrapped(t *testing.T) {
	provider := &stubProvider{CreateError: identity.ErrAccountExists}
	service := newTestAuthService(newFlakyStore(), provider)
	ctx := context.Background()
	service.Restore(ctx)

	_, err := service.Register(ctx, identity.Profile{Email: "jane@example.com"}, "secret", models.UserRolePassenger)
	if !errors.Is(err, ErrRegistrationFailed) {
		t.Errorf("expected ErrRegistrationFailed, got %v", err)
	}
}

func TestSignOut_ClearsSessionAndStorage(t *testing.T) {
	store := newFlakyStore()
	service := newTestAuthService(store, &stubProvider{})
	ctx := context.Background()
	service.Restore(ctx)

	if _, err := service.SignIn(ctx, "jane@example.com", "secret", models.UserRolePassenger); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	service.SignOut(ctx)

	session := service.Session()
	if session.Authenticated() || session.Status != models.SessionStatusReady {
		t.Errorf("sign-out must leave ready+unauthenticated, got %+v", session)
	}
	if _, err := store.Get(ctx, "session"); !errors.Is(err, keyvalue.ErrKeyNotFound) {
		t.Error("sign-out must remove the persisted session")
	}

	// Restart after sign-out stays signed out.
	fresh := newTestAuthService(store, &stubProvider{})
	fresh.Restore(ctx)
	if fresh.Session().Authenticated() {
		t.Error("session resurfaced after sign-out")
	}
}

func TestSignOut_SurvivesStorageFailure(t *testing.T) {
	store := newFlakyStore()
	service := newTestAuthService(store, &stubProvider{})
	ctx := context.Background()
	service.Restore(ctx)

	if _, err := service.SignIn(ctx, "jane@example.com", "secret", models.UserRolePassenger); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	store.RemoveError = errInjected
	service.SignOut(ctx)

	if service.Session().Authenticated() {
		t.Error("sign-out must clear memory even when storage fails")
	}
}

func TestRestore_MigratesLegacyKeys(t *testing.T) {
	store := newFlakyStore()
	ctx := context.Background()

	userData, _ := json.Marshal(models.User{ID: "user-7", Email: "old@example.com", Name: "Old Install"})
	store.Set(ctx, "authToken", "legacy-token")
	store.Set(ctx, "userType", "driver")
	store.Set(ctx, "userData", string(userData))

	service := newTestAuthService(store, &stubProvider{})
	service.Restore(ctx)

	session := service.Session()
	if !session.Authenticated() || session.Role != models.UserRoleDriver || session.User.ID != "user-7" {
		t.Fatalf("legacy session not restored: %+v", session)
	}

	// Legacy keys are rewritten as one consolidated record.
	if _, err := store.Get(ctx, "authToken"); !errors.Is(err, keyvalue.ErrKeyNotFound) {
		t.Error("legacy token key should be removed after migration")
	}
	raw, err := store.Get(ctx, "session")
	if err != nil {
		t.Fatalf("consolidated record missing after migration: %v", err)
	}
	var record struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(raw), &record); err != nil || record.Token != "legacy-token" {
		t.Errorf("migrated record does not carry the legacy token: %q", raw)
	}
}

func TestRestore_CorruptRecordDegrades(t *testing.T) {
	store := newFlakyStore()
	ctx := context.Background()
	store.Set(ctx, "session", "{not json")

	service := newTestAuthService(store, &stubProvider{})
	service.Restore(ctx)

	session := service.Session()
	if session.Status != models.SessionStatusReady || session.Authenticated() {
		t.Errorf("corrupt record must degrade to unauthenticated, got %+v", session)
	}
}

func TestUpdateProfile(t *testing.T) {
	store := newFlakyStore()
	service := newTestAuthService(store, &stubProvider{})
	ctx := context.Background()
	service.Restore(ctx)

	if _, err := service.UpdateProfile(ctx, ProfileUpdate{Name: "New Name"}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	if _, err := service.SignIn(ctx, "jane@example.com", "secret", models.UserRolePassenger); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	updated, err := service.UpdateProfile(ctx, ProfileUpdate{Name: "New Name"})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.Name != "New Name" || updated.Email != "jane@example.com" {
		t.Errorf("unexpected merge result: %+v", updated)
	}
	if service.Session().User.Name != "New Name" {
		t.Error("in-memory session not updated")
	}

	// The update survives a restart.
	fresh := newTestAuthService(store, &stubProvider{})
	fresh.Restore(ctx)
	if fresh.Session().User.Name != "New Name" {
		t.Error("profile update was not persisted")
	}
}

func TestToken_RoundTrip(t *testing.T) {
	service := newTestAuthService(newFlakyStore(), &stubProvider{})
	ctx := context.Background()
	service.Restore(ctx)

	if _, err := service.Token(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated before sign-in, got %v", err)
	}

	user, err := service.SignIn(ctx, "jane@example.com", "secret", models.UserRoleDriver)
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	token, err := service.Token(ctx)
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}

	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Subject != user.ID || claims.Role != models.UserRoleDriver {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := service.ValidateToken("not-a-token"); err == nil {
		t.Error("garbage token should not validate")
	}
}

func TestAuthSubscribe(t *testing.T) {
	service := newTestAuthService(newFlakyStore(), &stubProvider{})
	ctx := context.Background()

	var mu sync.Mutex
	var states []models.Session
	unsubscribe := service.Subscribe(func(session models.Session) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, session)
	})

	service.Restore(ctx)
	if _, err := service.SignIn(ctx, "jane@example.com", "secret", models.UserRolePassenger); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	mu.Lock()
	if len(states) != 2 {
		t.Fatalf("expected 2 notifications (restore, sign-in), got %d", len(states))
	}
	if states[0].Authenticated() || !states[1].Authenticated() {
		t.Errorf("unexpected notification order: %+v", states)
	}
	mu.Unlock()

	unsubscribe()
	service.SignOut(ctx)

	mu.Lock()
	if len(states) != 2 {
		t.Errorf("unsubscribed listener should not be notified, got %d calls", len(states))
	}
	mu.Unlock()
}

// A listener that calls back into the service must not deadlock.
func TestAuthSubscribe_ReentrantListener(t *testing.T) {
	service := newTestAuthService(newFlakyStore(), &stubProvider{})
	ctx := context.Background()

	var seen models.Session
	service.Subscribe(func(models.Session) {
		seen = service.Session()
	})

	service.Restore(ctx)

	if seen.Status != models.SessionStatusReady {
		t.Errorf("listener could not read the session: %+v", seen)
	}
}
