package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:          "5000",
		Env:           "production",
		DBDriver:      "postgres",
		DBPassword:    "secure-password",
		DBSSLMode:     "require",
		SessionSecret: "secure-secret-at-least-32-chars-long",
		CookieSecure:  true,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid production", func(*Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing session secret", func(c *Config) { c.SessionSecret = "" }, true},
		{"Default secret in production", func(c *Config) { c.SessionSecret = defaultSessionSecret }, true},
		{"Short secret in production", func(c *Config) { c.SessionSecret = "short" }, true},
		{"Short secret in development", func(c *Config) { c.Env = "development"; c.SessionSecret = "short" }, false},
		{"Default DB password in production", func(c *Config) { c.DBPassword = "password" }, true},
		{"SQLite in production", func(c *Config) { c.DBDriver = "sqlite" }, true},
		{"SQLite in development", func(c *Config) { c.Env = "development"; c.DBDriver = "sqlite" }, false},
		{"Unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"Negative session TTL", func(c *Config) { c.SessionTTLHours = -1 }, true},
		{"Sample ratio out of range", func(c *Config) { c.TracingSampleRatio = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("PORT", "6001")

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test", c.Env)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "6001", c.Port)
	assert.Equal(t, "hybrid", c.DBSchemaMode)
	assert.Equal(t, 24*7, c.SessionTTLHours)
	assert.False(t, c.IsProduction())
}

func TestLoadConfig_MissingProfileFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("APP_ENV", "staging-that-does-not-exist")

	_, err := LoadConfig()
	assert.Error(t, err)
}
