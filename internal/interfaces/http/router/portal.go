package router

import (
	"github.com/gin-gonic/gin"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/infrastructure/logger"
	"github.com/logia/portal/internal/infrastructure/metrics"
	"github.com/logia/portal/internal/interfaces/http/handler"
	"github.com/logia/portal/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the portal's HTTP handlers
type Handlers struct {
	Auth       *handler.AuthHandler
	Treasury   *handler.TreasuryHandler
	Attendance *handler.AttendanceHandler
	Members    *handler.MemberHandler
	Health     *handler.HealthHandler
}

// Options configures the middleware chain around the handlers
type Options struct {
	ServiceName    string
	Logger         *zap.Logger
	JWT            middleware.JWTMiddlewareConfig
	CORS           middleware.CORSConfig
	Tracing        bool
	Metrics        *metrics.Metrics
	MetricsPath    string
	LoginLimiter   *middleware.RateLimiter
	TrustedProxies []string
}

// NewEngine builds the gin engine serving /health, the Prometheus endpoint
// and the /api/v1 portal routes.
func NewEngine(opts Options, h Handlers) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{ServiceName: opts.ServiceName, Enabled: opts.Tracing}),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(opts.CORS),
		middleware.BodyLimit(middleware.DefaultBodyLimit),
	)
	if opts.Metrics != nil {
		engine.Use(opts.Metrics.GinMiddleware())
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(opts.Metrics.Handler()))
	}
	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}

	jwtCfg := opts.JWT
	if jwtCfg.Logger == nil {
		jwtCfg.Logger = log
	}
	r := NewRouter(engine, WithAPIMiddleware(
		middleware.JWTAuthMiddleware(jwtCfg),
		middleware.TracingAttributeInjector(),
	))
	for _, group := range portalGroups(h, opts.LoginLimiter, log) {
		r.Register(group)
	}
	r.Setup()

	return engine, nil
}

func portalGroups(h Handlers, limiter *middleware.RateLimiter, log *zap.Logger) []*DomainGroup {
	perm := func(p ...string) gin.HandlerFunc {
		return middleware.RequireAnyPermissionWithConfig(middleware.PermissionConfig{Logger: log}, p...)
	}
	var groups []*DomainGroup

	if h.Auth != nil {
		login := []gin.HandlerFunc{h.Auth.Login}
		if limiter != nil {
			login = append([]gin.HandlerFunc{middleware.RateLimit(limiter)}, login...)
		}
		groups = append(groups, NewDomainGroup("/auth").
			POST("/login", login...).
			POST("/logout", h.Auth.Logout).
			GET("/menu", h.Auth.Menu).
			POST("/password", h.Auth.ChangePassword))
	}

	// Statement and rate routes serve the member's own record, so the
	// service decides access from the viewer and the path ID.
	if h.Treasury != nil {
		groups = append(groups, NewDomainGroup("/treasury").
			GET("/members/:id/statement", h.Treasury.GetStatement).
			GET("/members/:id/payments", h.Treasury.ListPayments).
			GET("/debts", perm(membership.PermDebtReport), h.Treasury.DebtReport).
			POST("/dues-runs", perm(membership.PermDuesRun), h.Treasury.RunDues).
			POST("/payments", perm(membership.PermPaymentRecord), h.Treasury.RecordPayment).
			POST("/expenses", perm(membership.PermExpenseRecord), h.Treasury.RecordExpense).
			GET("/cash-balance", perm(membership.PermCashBook), h.Treasury.CashBalance))
	}

	if h.Attendance != nil {
		groups = append(groups, NewDomainGroup("/attendance").
			POST("/roll-calls", perm(membership.PermRollCall), h.Attendance.TakeRollCall).
			GET("/members/:id/rate", h.Attendance.MemberRate).
			GET("/report", perm(membership.PermAttendanceReport), h.Attendance.Report))
	}

	if h.Members != nil {
		groups = append(groups, NewDomainGroup("/members").
			POST("", perm(membership.PermMemberRegister), h.Members.Register).
			GET("/dossiers", perm(membership.PermDossierView), h.Members.ListDossiers))
	}

	return groups
}
