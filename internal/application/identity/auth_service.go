package identity

import (
	"context"
	"strings"

	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles authentication operations
type AuthService struct {
	members    membership.MemberRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	members membership.MemberRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		members:    members,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Login authenticates a member and opens a session.
// Legacy SHA-256 hashes are upgraded to bcrypt on the first successful login.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	s.logger.Info("Login attempt", zap.String("username", username))

	member, err := s.members.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Warn("Member not found during login", zap.String("username", username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}
	if !member.CanLogin() {
		s.logger.Warn("Login attempt for inactive member", zap.String("username", username))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Member is not active")
	}
	if !member.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if member.NeedsRehash() {
		if err := member.Rehash(input.Password); err != nil {
			s.logger.Error("Failed to rehash legacy password", zap.Error(err))
		} else if err := s.members.Save(ctx, member); err != nil {
			s.logger.Error("Failed to store rehashed password", zap.Error(err))
		} else {
			s.logger.Info("Legacy password upgraded", zap.String("member_id", member.ID.String()))
		}
	}

	token, err := s.jwtService.Issue(member)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	s.logger.Info("Member logged in",
		zap.String("username", username),
		zap.String("member_id", member.ID.String()))

	return &LoginResult{
		AccessToken:       token.AccessToken,
		ExpiresAt:         token.ExpiresAt,
		TokenType:         token.TokenType,
		MustResetPassword: member.MustResetPassword,
		Member:            toMemberInfo(member),
	}, nil
}

// Logout revokes the session token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return shared.NewDomainError("TOKEN_INVALID", "Token has no identifier")
	}
	ttl := claims.RemainingTTL()
	if ttl <= 0 || s.blacklist == nil {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("Failed to blacklist token", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
	}
	s.logger.Info("Member logged out", zap.String("member_id", claims.MemberID))
	return nil
}

// Menu returns the dashboard sections the viewer may open
func (s *AuthService) Menu(viewer membership.Viewer) []membership.MenuSection {
	return viewer.Role.Menu()
}

// ChangePassword replaces the viewer's password and clears the reset flag
func (s *AuthService) ChangePassword(ctx context.Context, viewer membership.Viewer, input ChangePasswordInput) error {
	member, err := s.members.FindByID(ctx, viewer.MemberID)
	if err != nil {
		return err
	}
	if !member.VerifyPassword(input.CurrentPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}
	if err := member.SetPassword(input.NewPassword); err != nil {
		return err
	}
	if err := s.members.Save(ctx, member); err != nil {
		return err
	}
	s.logger.Info("Password changed", zap.String("member_id", member.ID.String()))
	return nil
}
