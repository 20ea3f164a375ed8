package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedEnv = []string{
	"LENDING_APP_NAME",
	"LENDING_APP_ENV",
	"LENDING_APP_PORT",
	"LENDING_DATABASE_DRIVER",
	"LENDING_DATABASE_HOST",
	"LENDING_DATABASE_PORT",
	"LENDING_DATABASE_PASSWORD",
	"LENDING_DATABASE_SSLMODE",
	"LENDING_DATABASE_MAX_OPEN_CONNS",
	"LENDING_DATABASE_MAX_IDLE_CONNS",
	"LENDING_JWT_SECRET",
	"LENDING_LOANS_QUANTITY_POLICY",
	"LENDING_LOANS_NOTIFICATION_SINK",
	"LENDING_LOANS_IDEMPOTENCY_STORE",
	"LENDING_LOANS_IDEMPOTENCY_TTL",
	"LENDING_BOOTSTRAP_ADMIN_USERNAME",
	"LENDING_BOOTSTRAP_ADMIN_PASSWORD",
	"LENDING_TELEMETRY_SAMPLING_RATIO",
}

// clearEnv blanks every variable the tests touch; viper treats empty as unset
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedEnv {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "asset-lending", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "lending", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "available", cfg.Loans.QuantityPolicy)
		assert.Equal(t, "log", cfg.Loans.NotificationSink)
		assert.Equal(t, "memory", cfg.Loans.IdempotencyStore)
		assert.Equal(t, 24*time.Hour, cfg.Loans.IdempotencyTTL)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with LENDING prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LENDING_APP_NAME", "test-app")
		t.Setenv("LENDING_APP_PORT", "9000")
		t.Setenv("LENDING_DATABASE_HOST", "testdb.local")
		t.Setenv("LENDING_DATABASE_PORT", "5433")
		t.Setenv("LENDING_LOANS_QUANTITY_POLICY", "total")
		t.Setenv("LENDING_LOANS_NOTIFICATION_SINK", "redis")
		t.Setenv("LENDING_LOANS_IDEMPOTENCY_TTL", "2h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "total", cfg.Loans.QuantityPolicy)
		assert.Equal(t, "redis", cfg.Loans.NotificationSink)
		assert.Equal(t, 2*time.Hour, cfg.Loans.IdempotencyTTL)
	})

	t.Run("rejects unknown quantity policy", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LENDING_LOANS_QUANTITY_POLICY", "optimistic")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loans.quantity_policy")
	})

	t.Run("rejects unknown notification sink", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LENDING_LOANS_NOTIFICATION_SINK", "email")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loans.notification_sink")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LENDING_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("requires bootstrap password with bootstrap username", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LENDING_BOOTSTRAP_ADMIN_USERNAME", "admin")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bootstrap.admin_password")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LENDING_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("LENDING_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates sampling ratio range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LENDING_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LENDING_APP_ENV", "production")
		t.Setenv("LENDING_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("LENDING_DATABASE_PASSWORD", "secure-password")
		t.Setenv("LENDING_DATABASE_SSLMODE", "require")
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("LENDING_JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("LENDING_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("LENDING_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("LENDING_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("rejects sqlite in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("LENDING_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver must be postgres in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
