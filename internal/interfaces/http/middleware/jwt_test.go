package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/infrastructure/auth"
	"github.com/logia/portal/internal/infrastructure/config"
	"github.com/logia/portal/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-that-is-at-least-32-characters",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "lodge-portal-test",
	})
}

func testMember(t *testing.T, role membership.Role) *membership.Member {
	t.Helper()
	m, err := membership.RestoreMember(7, "Juan Perez", "jperez", "not-a-real-hash", role, membership.DegreeMaster, membership.StatusActive)
	require.NoError(t, err)
	return m
}

func newAuthEngine(cfg JWTMiddlewareConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), JWTAuthMiddleware(cfg))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/auth/menu", func(c *gin.Context) {
		viewer, ok := GetViewer(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"member_id": viewer.MemberID.String(), "role": viewer.Role})
	})
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := testJWTService()
	member := testMember(t, membership.RoleTreasurer)
	token, err := svc.Issue(member)
	require.NoError(t, err)

	t.Run("valid token exposes the viewer", func(t *testing.T) {
		r := newAuthEngine(DefaultJWTConfig(svc, nil))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/menu", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token.AccessToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), member.ID.String())
		assert.Contains(t, w.Body.String(), "TREASURER")
	})

	t.Run("skip paths need no token", func(t *testing.T) {
		r := newAuthEngine(DefaultJWTConfig(svc, nil))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "TOKEN_INVALID"},
		{"not bearer", "Basic abc", "TOKEN_INVALID"},
		{"garbage token", BearerPrefix + "garbage", "TOKEN_INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthEngine(DefaultJWTConfig(svc, nil))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/menu", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			errInfo := decodeError(t, w)
			assert.Equal(t, tt.code, errInfo.Code)
			assert.NotEmpty(t, errInfo.RequestID)
		})
	}

	t.Run("revoked token", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		tok, err := svc.Issue(member)
		require.NoError(t, err)
		parsed, err := svc.Validate(tok.AccessToken)
		require.NoError(t, err)
		require.NoError(t, blacklist.AddToBlacklist(context.Background(), parsed.ID, time.Minute))

		r := newAuthEngine(DefaultJWTConfig(svc, blacklist))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/menu", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+tok.AccessToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_REVOKED", decodeError(t, w).Code)
	})
}
