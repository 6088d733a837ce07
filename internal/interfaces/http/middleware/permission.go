package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/logia/portal/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	Logger *zap.Logger
}

// RequirePermission creates middleware that requires a specific permission
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permission)
}

// RequireAnyPermission lets the request through when the viewer's role grants
// at least one of the listed permissions
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permissions...)
}

// RequireAnyPermissionWithConfig is RequireAnyPermission with custom config
func RequireAnyPermissionWithConfig(cfg PermissionConfig, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, ok := GetViewer(c)
		if !ok {
			c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeUnauthorized),
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", c.GetString(RequestIDKey)))
			return
		}

		for _, p := range permissions {
			if viewer.Role.Can(p) {
				c.Next()
				return
			}
		}

		if cfg.Logger != nil {
			cfg.Logger.Warn("Permission denied",
				zap.String("member_id", viewer.MemberID.String()),
				zap.String("role", viewer.Role.String()),
				zap.Strings("required_any", permissions),
				zap.String("path", c.Request.URL.Path))
		}
		c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeForbidden),
			dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Your office does not grant access to this section", c.GetString(RequestIDKey)))
	}
}
