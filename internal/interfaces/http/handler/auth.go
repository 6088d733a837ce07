package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/logia/portal/internal/application/identity"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/infrastructure/auth"
	"github.com/logia/portal/internal/interfaces/http/middleware"
)

// AuthService is the session side of the identity application layer
type AuthService interface {
	Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Menu(viewer membership.Viewer) []membership.MenuSection
	ChangePassword(ctx context.Context, viewer membership.Viewer, input identity.ChangePasswordInput) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toLoginResponse(result))
}

// Logout handles POST /auth/logout by revoking the presented token
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Logged out"})
}

// Menu handles GET /auth/menu
func (h *AuthHandler) Menu(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	h.Success(c, MenuResponse{Role: viewer.Role, Menu: h.authService.Menu(viewer)})
}

// ChangePassword handles POST /auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	err := h.authService.ChangePassword(c.Request.Context(), viewer, identity.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Password updated"})
}
