package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/middleware"
	"github.com/anatomyace/anatomy-ace/internal/model"
	"github.com/anatomyace/anatomy-ace/internal/response"
	"github.com/anatomyace/anatomy-ace/internal/service"
	"github.com/anatomyace/anatomy-ace/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Checks the admin password and returns an admin JWT.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, err := h.authService.AdminLogin(req.Password)
	switch {
	case errors.Is(err, service.ErrAdminLoginDisabled):
		response.Fail(c, http.StatusForbidden, response.ErrLoginDisabled)
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		h.log.Warn().Str("ip", c.ClientIP()).Msg("Failed admin login")
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Admin login failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token})
}

// GetAdminProfile godoc
// GET /api/v1/auth/admin/me
// Returns the claims of the current admin token.
func (h *AuthHandler) GetAdminProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"subject":    claims.Subject,
		"token_type": claims.TokenType,
		"expires_at": claims.ExpiresAt.Time,
	})
}
