package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storeline", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Sequence.MaxAttempts)
		assert.Equal(t, "session_id", cfg.Session.CookieName)
		assert.Equal(t, "half_up", cfg.Sales.RoundingMode)
		assert.Equal(t, int32(2), cfg.Sales.RoundingPlaces)
		assert.Equal(t, 15*time.Second, cfg.Inventory.TransactionTimeout)
		assert.False(t, cfg.Redis.Enabled)
	})

	t.Run("loads values from environment variables with RETAIL prefix", func(t *testing.T) {
		t.Setenv("RETAIL_APP_PORT", "9000")
		t.Setenv("RETAIL_DATABASE_DRIVER", "sqlite")
		t.Setenv("RETAIL_DATABASE_SQLITE_PATH", "/tmp/shop.db")
		t.Setenv("RETAIL_SEQUENCE_MAX_ATTEMPTS", "8")
		t.Setenv("RETAIL_SALES_ROUNDING_MODE", "bankers")
		t.Setenv("RETAIL_REDIS_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "/tmp/shop.db", cfg.Database.SQLitePath)
		assert.Equal(t, 8, cfg.Sequence.MaxAttempts)
		assert.Equal(t, "bankers", cfg.Sales.RoundingMode)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("RETAIL_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("RETAIL_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Setenv("RETAIL_DATABASE_DRIVER", "mysql")
		_, err := Load()
		assert.ErrorContains(t, err, "database.driver")
	})

	t.Run("rejects unknown rounding mode", func(t *testing.T) {
		t.Setenv("RETAIL_SALES_ROUNDING_MODE", "ceiling")
		_, err := Load()
		assert.ErrorContains(t, err, "sales.rounding_mode")
	})
}

func TestValidateProduction(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.App.Env = "production"
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		cfg.Session.Secure = true
		applyDefaults(cfg)
		return cfg
	}
	require.NoError(t, valid().validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"short jwt secret", func(c *Config) { c.JWT.Secret = "short" }, "jwt.secret"},
		{"sqlite", func(c *Config) { c.Database.Driver = "sqlite" }, "sqlite"},
		{"no db password", func(c *Config) { c.Database.Password = "" }, "database.password"},
		{"ssl disabled", func(c *Config) { c.Database.SSLMode = "disable" }, "sslmode"},
		{"insecure session cookie", func(c *Config) { c.Session.Secure = false }, "session.secure"},
		{"wildcard cors", func(c *Config) { c.HTTP.CORSAllowOrigins = []string{"*"} }, "cors"},
		{"full sql in traces", func(c *Config) { c.Telemetry.DBLogFullSQL = true }, "db_log_full_sql"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.validate(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "app", Password: "p@ss/word", Host: "db", Port: 5432, DBName: "shop", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/shop?sslmode=disable", d.DSN())
}
