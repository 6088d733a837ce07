package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/logia/portal/internal/application/identity"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/shared"
	"github.com/logia/portal/internal/infrastructure/auth"
	"github.com/logia/portal/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.LoginResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	return m.Called(ctx, claims).Error(0)
}

func (m *MockAuthService) Menu(viewer membership.Viewer) []membership.MenuSection {
	return m.Called(viewer).Get(0).([]membership.MenuSection)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, viewer membership.Viewer, input identity.ChangePasswordInput) error {
	return m.Called(ctx, viewer, input).Error(0)
}

func authEngine(v *membership.Viewer, claims *auth.Claims, svc AuthService) http.Handler {
	h := NewAuthHandler(svc)
	r := newTestEngine(v)
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.JWTClaimsKey, claims)
		}
	})
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/menu", h.Menu)
	r.POST("/auth/password", h.ChangePassword)
	return r
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, identity.LoginInput{Username: "jperez", Password: "secreto1"}).Return(&identity.LoginResult{
			AccessToken:       "token",
			ExpiresAt:         time.Now().Add(time.Hour),
			TokenType:         "Bearer",
			MustResetPassword: true,
			Member: identity.MemberInfo{
				ID:       uuid.New(),
				Number:   7,
				FullName: "Juan Perez",
				Username: "jperez",
				Role:     membership.RoleTreasurer,
				Degree:   membership.DegreeMaster,
				Menu:     membership.RoleTreasurer.Menu(),
			},
		}, nil)

		w, resp := perform(t, authEngine(nil, nil, svc), http.MethodPost, "/auth/login",
			`{"username":"jperez","password":"secreto1"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var body LoginResponse
		decodeData(t, resp, &body)
		assert.Equal(t, "token", body.Token.AccessToken)
		assert.True(t, body.MustResetPassword)
		assert.Equal(t, 7, body.Member.Number)
		assert.Contains(t, body.Member.Menu, membership.MenuDebtReport)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, mock.Anything).Return(nil,
			shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password"))

		w, resp := perform(t, authEngine(nil, nil, svc), http.MethodPost, "/auth/login",
			`{"username":"jperez","password":"otro"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
	})

	t.Run("inactive member", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, mock.Anything).Return(nil,
			shared.NewDomainError("ACCOUNT_INACTIVE", "Account is inactive"))

		w, _ := perform(t, authEngine(nil, nil, svc), http.MethodPost, "/auth/login",
			`{"username":"jperez","password":"secreto1"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w, _ := perform(t, authEngine(nil, nil, new(MockAuthService)), http.MethodPost, "/auth/login", `{"username":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	claims := &auth.Claims{MemberID: uuid.NewString()}
	claims.ID = uuid.NewString()
	svc := new(MockAuthService)
	svc.On("Logout", mock.Anything, claims).Return(nil)

	w, _ := perform(t, authEngine(nil, claims, svc), http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)

	w, _ = perform(t, authEngine(nil, nil, svc), http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Menu(t *testing.T) {
	viewer := viewerOf(membership.RoleMember)
	svc := new(MockAuthService)
	svc.On("Menu", viewer).Return(membership.RoleMember.Menu())

	w, resp := perform(t, authEngine(&viewer, nil, svc), http.MethodGet, "/auth/menu", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body MenuResponse
	decodeData(t, resp, &body)
	assert.Equal(t, membership.RoleMember, body.Role)
	assert.Equal(t, []membership.MenuSection{membership.MenuProfile, membership.MenuStatement, membership.MenuAttendance}, body.Menu)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	viewer := viewerOf(membership.RoleMember)
	svc := new(MockAuthService)
	svc.On("ChangePassword", mock.Anything, viewer, identity.ChangePasswordInput{CurrentPassword: "viejo1", NewPassword: "nuevo-secreto"}).Return(nil)

	w, _ := perform(t, authEngine(&viewer, nil, svc), http.MethodPost, "/auth/password",
		`{"current_password":"viejo1","new_password":"nuevo-secreto"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := perform(t, authEngine(&viewer, nil, svc), http.MethodPost, "/auth/password",
		`{"current_password":"viejo1","new_password":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "new_password", resp.Error.Details[0].Field)
}
