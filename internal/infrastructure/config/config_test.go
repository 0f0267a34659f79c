package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"STOREFRONT_APP_NAME":                    os.Getenv("STOREFRONT_APP_NAME"),
		"STOREFRONT_APP_ENV":                     os.Getenv("STOREFRONT_APP_ENV"),
		"STOREFRONT_APP_PORT":                    os.Getenv("STOREFRONT_APP_PORT"),
		"STOREFRONT_DATABASE_DRIVER":             os.Getenv("STOREFRONT_DATABASE_DRIVER"),
		"STOREFRONT_DATABASE_HOST":               os.Getenv("STOREFRONT_DATABASE_HOST"),
		"STOREFRONT_DATABASE_PASSWORD":           os.Getenv("STOREFRONT_DATABASE_PASSWORD"),
		"STOREFRONT_DATABASE_SSLMODE":            os.Getenv("STOREFRONT_DATABASE_SSLMODE"),
		"STOREFRONT_QUEUE_MAX_ATTEMPTS":          os.Getenv("STOREFRONT_QUEUE_MAX_ATTEMPTS"),
		"STOREFRONT_QUEUE_BASE_BACKOFF":          os.Getenv("STOREFRONT_QUEUE_BASE_BACKOFF"),
		"STOREFRONT_CHANNELS_EMAIL_ENABLED":      os.Getenv("STOREFRONT_CHANNELS_EMAIL_ENABLED"),
		"STOREFRONT_WORKFLOW_SIMULATION_ENABLED": os.Getenv("STOREFRONT_WORKFLOW_SIMULATION_ENABLED"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "storefront", cfg.Database.DBName)
		assert.Equal(t, 3, cfg.Queue.MaxAttempts)
		assert.Equal(t, 2*time.Second, cfg.Queue.BaseBackoff)
		assert.Equal(t, time.Minute, cfg.Queue.MaxBackoff)
		assert.Equal(t, 2, cfg.Queue.WorkersPerChannel)
		assert.Equal(t, 100, cfg.Center.RetentionPerUser)
		assert.Equal(t, 30*time.Second, cfg.Workflow.StepDelay)
		assert.False(t, cfg.Workflow.SimulationEnabled)
	})

	t.Run("loads values from environment variables with STOREFRONT prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_APP_NAME", "test-app")
		os.Setenv("STOREFRONT_APP_PORT", "9000")
		os.Setenv("STOREFRONT_DATABASE_DRIVER", "sqlite")
		os.Setenv("STOREFRONT_QUEUE_MAX_ATTEMPTS", "5")
		os.Setenv("STOREFRONT_QUEUE_BASE_BACKOFF", "500ms")
		os.Setenv("STOREFRONT_CHANNELS_EMAIL_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, 5, cfg.Queue.MaxAttempts)
		assert.Equal(t, 500*time.Millisecond, cfg.Queue.BaseBackoff)
		assert.True(t, cfg.Channels.Email.Enabled)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("production requires hardened settings", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("production rejects the workflow simulator", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_APP_ENV", "production")
		os.Setenv("STOREFRONT_DATABASE_PASSWORD", "secret")
		os.Setenv("STOREFRONT_DATABASE_SSLMODE", "require")
		os.Setenv("STOREFRONT_WORKFLOW_SIMULATION_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulation")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "storefront",
		Password: "p@ss:word",
		DBName:   "orders",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password are escaped
	assert.Contains(t, dsn, "p%40ss%3Aword")
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
