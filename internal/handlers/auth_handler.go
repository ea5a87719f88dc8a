package handlers

import (
	"errors"
	"net/http"

	"ridelink/internal/identity"
	"ridelink/internal/models"
	"ridelink/internal/services"
	"ridelink/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type profileUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionResponse struct {
	User  *models.User    `json:"user"`
	Role  models.UserRole `json:"role,omitempty"`
	Token string          `json:"token,omitempty"`
}

// SignIn authenticates and returns the user record plus session token.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var request signInRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	role := models.UserRole(request.Role)
	if request.Role == "" {
		role = models.UserRolePassenger
	}

	user, err := h.authService.SignIn(c.Request.Context(), request.Email, request.Password, role)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	token, _ := h.authService.Token(c.Request.Context())
	utils.SuccessResponse(c, "Signed in successfully", sessionResponse{
		User:  user,
		Role:  role,
		Token: token,
	})
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var request registerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	role := models.UserRole(request.Role)
	if request.Role == "" {
		role = models.UserRolePassenger
	}

	profile := identity.Profile{
		Name:  request.Name,
		Email: request.Email,
		Phone: request.Phone,
	}

	user, err := h.authService.Register(c.Request.Context(), profile, request.Password, role)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	token, _ := h.authService.Token(c.Request.Context())
	utils.SuccessResponse(c, "Registered successfully", sessionResponse{
		User:  user,
		Role:  role,
		Token: token,
	})
}

// SignOut clears the session. Always succeeds.
func (h *AuthHandler) SignOut(c *gin.Context) {
	h.authService.SignOut(c.Request.Context())
	utils.SuccessResponse(c, "Signed out successfully", nil)
}

// GetSession returns the current session snapshot.
func (h *AuthHandler) GetSession(c *gin.Context) {
	utils.SuccessResponse(c, "", h.authService.Session())
}

// UpdateProfile merges profile fields into the signed-in user record.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var request profileUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), services.ProfileUpdate{
		Name:  request.Name,
		Email: request.Email,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile updated", user)
}

// ResolveRoute exposes the navigation decision table to the UI layer.
func (h *AuthHandler) ResolveRoute(c *gin.Context) {
	screen := services.Screen(c.Query("screen"))
	if screen == "" {
		utils.BadRequestResponse(c, "screen query parameter is required")
		return
	}

	decision := services.ResolveRoute(screen, h.authService.Session())
	utils.SuccessResponse(c, "", decision)
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, services.ErrAuthenticationFailed),
		errors.Is(err, services.ErrRegistrationFailed):
		// No detail about which field was wrong.
		utils.ErrorResponse(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	case errors.Is(err, services.ErrAlreadyAuthenticated):
		utils.ErrorResponse(c, http.StatusConflict, "ALREADY_AUTHENTICATED", "Sign out before signing in again")
	case errors.Is(err, services.ErrNotAuthenticated):
		utils.UnauthorizedResponse(c)
	default:
		utils.InternalServerErrorResponse(c)
	}
}
