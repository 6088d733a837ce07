package handler

import (
	"time"

	"github.com/logia/portal/internal/application/identity"
	"github.com/logia/portal/internal/domain/membership"
)

// LoginRequest represents the login form
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,max=72"`
}

// ChangePasswordRequest replaces the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72"`
}

// TokenResponse represents the issued access token
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
}

// MemberInfoResponse is the logged-in member
type MemberInfoResponse struct {
	ID          string                   `json:"id"`
	Number      int                      `json:"number"`
	FullName    string                   `json:"full_name"`
	Username    string                   `json:"username"`
	Role        membership.Role          `json:"role"`
	Degree      membership.Degree        `json:"degree"`
	Permissions []string                 `json:"permissions"`
	Menu        []membership.MenuSection `json:"menu"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Token             TokenResponse      `json:"token"`
	MustResetPassword bool               `json:"must_reset_password"`
	Member            MemberInfoResponse `json:"member"`
}

// MenuResponse lists the dashboard sections the caller may open
type MenuResponse struct {
	Role membership.Role          `json:"role"`
	Menu []membership.MenuSection `json:"menu"`
}

// MessageResponse carries a human-readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

func toLoginResponse(r *identity.LoginResult) LoginResponse {
	return LoginResponse{
		Token: TokenResponse{
			AccessToken: r.AccessToken,
			ExpiresAt:   r.ExpiresAt,
			TokenType:   r.TokenType,
		},
		MustResetPassword: r.MustResetPassword,
		Member: MemberInfoResponse{
			ID:          r.Member.ID.String(),
			Number:      r.Member.Number,
			FullName:    r.Member.FullName,
			Username:    r.Member.Username,
			Role:        r.Member.Role,
			Degree:      r.Member.Degree,
			Permissions: r.Member.Permissions,
			Menu:        r.Member.Menu,
		},
	}
}
