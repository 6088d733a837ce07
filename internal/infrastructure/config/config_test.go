package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var portalEnv = []string{
	"PORTAL_APP_NAME",
	"PORTAL_APP_ENV",
	"PORTAL_APP_PORT",
	"PORTAL_DATABASE_HOST",
	"PORTAL_DATABASE_PORT",
	"PORTAL_DATABASE_PASSWORD",
	"PORTAL_DATABASE_SSLMODE",
	"PORTAL_DATABASE_MAX_OPEN_CONNS",
	"PORTAL_DATABASE_MAX_IDLE_CONNS",
	"PORTAL_JWT_SECRET",
	"PORTAL_TREASURY_DUES_AMOUNT",
	"PORTAL_IMPORT_DELIMITER",
	"PORTAL_TELEMETRY_ENABLED",
	"PORTAL_TELEMETRY_SAMPLING_RATIO",
}

// clearEnv blanks every override; t.Setenv restores the originals afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range portalEnv {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "lodge-portal", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "portal", cfg.Database.DBName)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
		assert.Equal(t, "MXN", cfg.Treasury.Currency)
		assert.Equal(t, "450", cfg.Treasury.DuesAmount.String())
		assert.Equal(t, "02/01/2006", cfg.Import.DateLayout)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with PORTAL prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORTAL_APP_PORT", "9000")
		t.Setenv("PORTAL_DATABASE_HOST", "db.local")
		t.Setenv("PORTAL_DATABASE_PORT", "5433")
		t.Setenv("PORTAL_TREASURY_DUES_AMOUNT", "500.00")
		t.Setenv("PORTAL_IMPORT_DELIMITER", ";")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "db.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "500", cfg.Treasury.DuesAmount.String())
		assert.Equal(t, ";", cfg.Import.Delimiter)
	})

	t.Run("rejects malformed dues amount", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORTAL_TREASURY_DUES_AMOUNT", "lots")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORTAL_TELEMETRY_ENABLED", "true")
		t.Setenv("PORTAL_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORTAL_DATABASE_MAX_OPEN_CONNS", "2")
		t.Setenv("PORTAL_DATABASE_MAX_IDLE_CONNS", "5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("requires jwt secret", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORTAL_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("requires ssl", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORTAL_APP_ENV", "production")
		t.Setenv("PORTAL_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("PORTAL_DATABASE_PASSWORD", "pw")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("accepts a complete production config", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORTAL_APP_ENV", "production")
		t.Setenv("PORTAL_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("PORTAL_DATABASE_PASSWORD", "pw")
		t.Setenv("PORTAL_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p@ss word", DBName: "portal", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%20word@h:5432/portal?sslmode=disable", d.DSN())
}
