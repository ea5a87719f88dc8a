package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ridelink/internal/identity"
	"ridelink/internal/middleware"
	"ridelink/internal/services"
	"ridelink/pkg/keyvalue"
	"ridelink/pkg/logger"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, services.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService := services.NewAuthService(
		keyvalue.NewMemoryStore(),
		identity.NewMockProvider(),
		"test-secret",
		time.Hour,
		logger.NewNop(),
	)
	authService.Restore(context.Background())

	handler := NewAuthHandler(authService)
	router := gin.New()

	router.POST("/auth/login", handler.SignIn)
	router.GET("/auth/session", handler.GetSession)
	router.GET("/auth/route-guard", handler.ResolveRoute)

	protected := router.Group("/auth")
	protected.Use(middleware.AuthRequired(authService))
	protected.POST("/logout", handler.SignOut)

	return router, authService
}

func doJSON(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestSignInEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doJSON(router, http.MethodPost, "/auth/login",
		`{"email":"jane@example.com","password":"secret","role":"driver"}`, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		Status string `json:"status"`
		Data   struct {
			Role  string `json:"role"`
			Token string `json:"token"`
			User  struct {
				Email string `json:"email"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.Status != "success" || response.Data.Role != "driver" || response.Data.Token == "" {
		t.Errorf("unexpected payload: %s", recorder.Body.String())
	}
	if response.Data.User.Email != "jane@example.com" {
		t.Errorf("unexpected user: %s", recorder.Body.String())
	}
}

func TestSignInEndpoint_BadRequests(t *testing.T) {
	router, _ := newTestRouter(t)

	if recorder := doJSON(router, http.MethodPost, "/auth/login", `{}`, ""); recorder.Code != http.StatusBadRequest {
		t.Errorf("missing fields: expected 400, got %d", recorder.Code)
	}
	if recorder := doJSON(router, http.MethodPost, "/auth/login",
		`{"email":"jane@example.com","password":"secret","role":"admin"}`, ""); recorder.Code != http.StatusBadRequest {
		t.Errorf("unknown role: expected 400, got %d", recorder.Code)
	}
}

func TestSignInEndpoint_ConflictWhenAuthenticated(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"email":"jane@example.com","password":"secret"}`
	if recorder := doJSON(router, http.MethodPost, "/auth/login", body, ""); recorder.Code != http.StatusOK {
		t.Fatalf("first sign-in failed: %d", recorder.Code)
	}
	if recorder := doJSON(router, http.MethodPost, "/auth/login", body, ""); recorder.Code != http.StatusConflict {
		t.Errorf("second sign-in: expected 409, got %d", recorder.Code)
	}
}

func TestLogoutEndpoint_RequiresToken(t *testing.T) {
	router, authService := newTestRouter(t)

	if recorder := doJSON(router, http.MethodPost, "/auth/logout", "", ""); recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", recorder.Code)
	}

	if recorder := doJSON(router, http.MethodPost, "/auth/login",
		`{"email":"jane@example.com","password":"secret"}`, ""); recorder.Code != http.StatusOK {
		t.Fatalf("sign-in failed: %d", recorder.Code)
	}
	token, err := authService.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}

	if recorder := doJSON(router, http.MethodPost, "/auth/logout", "", token); recorder.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", recorder.Code)
	}
	if authService.Session().Authenticated() {
		t.Error("logout endpoint did not clear the session")
	}
}

func TestRouteGuardEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	if recorder := doJSON(router, http.MethodGet, "/auth/route-guard", "", ""); recorder.Code != http.StatusBadRequest {
		t.Errorf("missing screen: expected 400, got %d", recorder.Code)
	}

	recorder := doJSON(router, http.MethodGet, "/auth/route-guard?screen=home", "", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var response struct {
		Data struct {
			Action string `json:"action"`
			Target string `json:"target"`
		} `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.Data.Action != "redirect" || response.Data.Target != "login" {
		t.Errorf("anonymous home visit should redirect to login, got %+v", response.Data)
	}
}
