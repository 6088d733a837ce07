package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appattendance "github.com/logia/portal/internal/application/attendance"
	"github.com/logia/portal/internal/application/identity"
	apptreasury "github.com/logia/portal/internal/application/treasury"
	"github.com/logia/portal/internal/domain/shared/valueobject"
	"github.com/logia/portal/internal/infrastructure/auth"
	"github.com/logia/portal/internal/infrastructure/config"
	"github.com/logia/portal/internal/infrastructure/logger"
	"github.com/logia/portal/internal/infrastructure/metrics"
	"github.com/logia/portal/internal/infrastructure/persistence"
	"github.com/logia/portal/internal/infrastructure/telemetry"
	"github.com/logia/portal/internal/interfaces/http/handler"
	"github.com/logia/portal/internal/interfaces/http/middleware"
	"github.com/logia/portal/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

const (
	loginAttempts = 10
	loginWindow   = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.NewProvider(ctx, cfg.Telemetry, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = tp.WrapLogger(log, zapcore.InfoLevel)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting lodge portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := tp.RegisterGORM(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}
	log.Info("Database connected successfully")

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	blacklist := newTokenBlacklist(ctx, cfg.Redis, log)
	jwtService := auth.NewJWTService(cfg.JWT)

	members := persistence.NewGormMemberRepository(db.DB)
	ledger := persistence.NewGormLedgerRepository(db.DB)
	book := persistence.NewGormCashBookRepository(db.DB)
	records := persistence.NewGormAttendanceRepository(db.DB)
	uow := persistence.NewUnitOfWork(db.DB)

	duesAmount, err := valueobject.NewMoney(cfg.Treasury.DuesAmount, valueobject.Currency(cfg.Treasury.Currency))
	if err != nil {
		log.Fatal("Invalid dues amount", zap.Error(err))
	}
	treasuryService := apptreasury.NewService(ledger, members, book, uow, apptreasury.Config{
		Currency:   valueobject.Currency(cfg.Treasury.Currency),
		DuesAmount: duesAmount,
	}, m, log)

	loginLimiter := middleware.NewRateLimiter(loginAttempts, loginWindow)
	go loginLimiter.Run(ctx)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine, err := router.NewEngine(router.Options{
		ServiceName:    cfg.App.Name,
		Logger:         log,
		JWT:            middleware.DefaultJWTConfig(jwtService, blacklist),
		CORS:           cors,
		Tracing:        tp.Enabled(),
		Metrics:        m,
		MetricsPath:    cfg.Metrics.Path,
		LoginLimiter:   loginLimiter,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, router.Handlers{
		Auth:       handler.NewAuthHandler(identity.NewAuthService(members, jwtService, blacklist, log)),
		Treasury:   handler.NewTreasuryHandler(treasuryService),
		Attendance: handler.NewAttendanceHandler(appattendance.NewService(records, members, log)),
		Members:    handler.NewMemberHandler(identity.NewMemberService(members, log)),
		Health:     handler.NewHealthHandler(cfg.App.Name, version, sqlDB),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// newTokenBlacklist prefers Redis so revocations survive restarts and are
// shared between replicas; it falls back to process memory.
func newTokenBlacklist(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) auth.TokenBlacklist {
	if !cfg.Enabled {
		log.Info("Redis disabled, token revocations are kept in memory")
		return auth.NewInMemoryTokenBlacklist()
	}
	bl, err := auth.NewRedisTokenBlacklist(ctx, cfg.Addr(), cfg.Password, cfg.DB)
	if err != nil {
		log.Warn("Redis unavailable, token revocations are kept in memory", zap.Error(err))
		return auth.NewInMemoryTokenBlacklist()
	}
	log.Info("Token blacklist backed by Redis", zap.String("addr", cfg.Addr()))
	return bl
}
