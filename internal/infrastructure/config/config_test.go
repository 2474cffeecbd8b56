package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("FLIGHT_API_KEY", "key-1")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, 15*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, StorageMongo, cfg.StorageDriver)
	assert.Equal(t, "key-1", cfg.FlightAPIKey)
	assert.False(t, cfg.SMSEnabled)
	assert.Empty(t, cfg.AdminToken)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("storage_driver: sqlite\nsqlite_path: /tmp/flights.db\nreconcile_interval: 5m\nflight_api_key: from-file\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("FLIGHT_API_KEY", "from-env")
	t.Setenv("SMS_ENABLED", "true")
	t.Setenv("NOTIFY_TIMEOUT", "2s")
	t.Setenv("ADMIN_TOKEN", "ops-secret")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/flights.db", cfg.SQLitePath)
	assert.Equal(t, 5*time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, "from-env", cfg.FlightAPIKey)
	assert.Equal(t, 2*time.Second, cfg.NotifyTimeout)
	assert.True(t, cfg.SMSEnabled)
	assert.Equal(t, "ops-secret", cfg.AdminToken)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	t.Setenv("RECONCILE_INTERVAL", "often")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECONCILE_INTERVAL")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		return &Config{
			StorageDriver:     StorageSQLite,
			SQLitePath:        "flights.db",
			FlightAPIURL:      "https://api.example.com/v1/flights",
			FlightAPIKey:      "key",
			ReconcileInterval: time.Minute,
			GmailClientID:     "client",
			GmailClientSecret: "secret",
			GmailRefreshToken: "refresh",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid sqlite", func(*Config) {}, ""},
		{"missing api key", func(c *Config) { c.FlightAPIKey = "" }, "FLIGHT_API_KEY"},
		{"zero interval", func(c *Config) { c.ReconcileInterval = 0 }, "RECONCILE_INTERVAL"},
		{"unknown driver", func(c *Config) { c.StorageDriver = "redis" }, "STORAGE_DRIVER"},
		{"mongo without postgres", func(c *Config) {
			c.StorageDriver = StorageMongo
			c.MongoURI = "mongodb://localhost:27017"
		}, "POSTGRES_DSN"},
		{"missing gmail credentials", func(c *Config) { c.GmailRefreshToken = "" }, "GMAIL_REFRESH_TOKEN"},
		{"sms without token", func(c *Config) { c.SMSEnabled = true }, "SMS_GATEWAY_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	d, err := parseDuration("45")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, d)

	d, err = parseDuration("1h30m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	d, err = parseDuration("")
	require.NoError(t, err)
	assert.Zero(t, d)
}
