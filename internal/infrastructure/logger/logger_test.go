package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("honours level", func(t *testing.T) {
		l := New(Config{Level: "warn", Format: "json"})
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("writes to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "portal.log")
		l := New(Config{Level: "info", Format: "json", Output: path})
		l.Info("hello")
		require.NoError(t, l.Sync())
		assert.FileExists(t, path)
	})

	t.Run("production uses json", func(t *testing.T) {
		assert.NotNil(t, ForEnvironment("production", "info"))
	})
}

func TestContextLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithMemberID(ctx, "member-9")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	L(ctx).With(zap.String("op", "statement")).Info("done")

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "member-9", fields["member_id"])
	assert.Equal(t, "statement", fields["op"])
	assert.Equal(t, traceID.String(), fields["trace_id"])
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestForContext(t *testing.T) {
	fallbackCore, fallbackLogs := observer.New(zapcore.InfoLevel)
	fallback := zap.New(fallbackCore)

	ForContext(context.Background(), fallback).Info("from cli")
	assert.Equal(t, 1, fallbackLogs.Len())

	reqCore, reqLogs := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(reqCore))
	ForContext(ctx, fallback).Info("from request")
	assert.Equal(t, 1, reqLogs.Len())
	assert.Equal(t, 1, fallbackLogs.Len())

	assert.NotPanics(t, func() { ForContext(context.Background(), nil).Info("dropped") })
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("logs status by level and propagates request id", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(func(c *gin.Context) { c.Set("request_id", "abc") })
		router.Use(GinMiddleware(zap.New(core)))

		var seen string
		router.GET("/missing", func(c *gin.Context) {
			seen = GetRequestID(c.Request.Context())
			c.Status(http.StatusNotFound)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		assert.Equal(t, "abc", seen)
		logs := recorded.FilterMessage("HTTP Request").All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
		assert.Equal(t, "abc", logs[0].ContextMap()["request_id"])
	})

	t.Run("recovery answers 500", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(Recovery(zap.New(core)))
		router.GET("/boom", func(c *gin.Context) { panic("boom") })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
	})
}

func TestGormLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, 10*time.Millisecond)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, recorded.Len())

	gl.Trace(context.Background(), time.Now(), sql, errors.New("broken"))
	assert.Equal(t, 1, recorded.FilterMessage("SQL Error").Len())

	gl.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Equal(t, 2, recorded.Len())

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), sql, errors.New("ignored"))
	assert.Equal(t, 2, recorded.Len())

	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("whatever"))
}
