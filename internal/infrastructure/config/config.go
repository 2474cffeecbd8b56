package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	StorageMongo  = "mongo"
	StorageSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AdminToken   string

	// Storage
	StorageDriver string
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string
	PostgresURI   string
	SQLitePath    string

	// Flight status provider
	FlightAPIURL     string
	FlightAPIKey     string
	FlightAPITimeout time.Duration

	// Reconciliation
	ReconcileInterval time.Duration
	NotifyTimeout     time.Duration

	// Gmail
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailSender       string

	// SMS gateway
	SMSEnabled      bool
	SMSGatewayURL   string
	SMSGatewayToken string
	CompanyID       string
	AgentID         string
}

var defaults = map[string]any{
	"app_version":        "1.0.0",
	"log_level":          "info",
	"port":               "8080",
	"read_timeout":       "30",
	"write_timeout":      "30",
	"storage_driver":     StorageMongo,
	"mongodb_dsn":        "mongodb://localhost:27017",
	"mongo_db":           "flightwatch",
	"sqlite_path":        "flightwatch.db",
	"flight_api_url":     "https://api.aviationstack.com/v1/flights",
	"flight_api_timeout": "30",
	"reconcile_interval": "10m",
	"notify_timeout":     "15",
	"sms_enabled":        false,
}

// LoadConfig reads .env, then the optional config file, then the
// environment. Environment variables win over the file.
func LoadConfig(configFile string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		AppVersion: v.GetString("app_version"),
		LogLevel:   v.GetString("log_level"),

		Port:       v.GetString("port"),
		AdminToken: v.GetString("admin_token"),

		StorageDriver: strings.ToLower(v.GetString("storage_driver")),
		MongoURI:      v.GetString("mongodb_dsn"),
		MongoDB:       v.GetString("mongo_db"),
		MongoUser:     v.GetString("mongo_user"),
		MongoPassword: v.GetString("mongo_password"),
		PostgresURI:   v.GetString("postgres_dsn"),
		SQLitePath:    v.GetString("sqlite_path"),

		FlightAPIURL: v.GetString("flight_api_url"),
		FlightAPIKey: v.GetString("flight_api_key"),

		GmailClientID:     v.GetString("gmail_client_id"),
		GmailClientSecret: v.GetString("gmail_client_secret"),
		GmailRefreshToken: v.GetString("gmail_refresh_token"),
		GmailSender:       v.GetString("gmail_sender"),

		SMSEnabled:      v.GetBool("sms_enabled"),
		SMSGatewayURL:   v.GetString("sms_gateway_url"),
		SMSGatewayToken: v.GetString("sms_gateway_token"),
		CompanyID:       v.GetString("company_id"),
		AgentID:         v.GetString("agent_id"),
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"read_timeout", &cfg.ReadTimeout},
		{"write_timeout", &cfg.WriteTimeout},
		{"flight_api_timeout", &cfg.FlightAPITimeout},
		{"reconcile_interval", &cfg.ReconcileInterval},
		{"notify_timeout", &cfg.NotifyTimeout},
	}
	for _, d := range durations {
		value, err := parseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", strings.ToUpper(d.key), err)
		}
		*d.target = value
	}

	return cfg, nil
}

// Validate checks the settings the reconciliation loop cannot run without
func (c *Config) Validate() error {
	var errs []error

	if c.FlightAPIKey == "" {
		errs = append(errs, errors.New("FLIGHT_API_KEY is required"))
	}
	if c.FlightAPIURL == "" {
		errs = append(errs, errors.New("FLIGHT_API_URL is required"))
	}
	if c.ReconcileInterval <= 0 {
		errs = append(errs, errors.New("RECONCILE_INTERVAL must be positive"))
	}

	switch c.StorageDriver {
	case StorageMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_DSN is required for the mongo driver"))
		}
		if c.PostgresURI == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the mongo driver"))
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	if c.GmailClientID == "" || c.GmailClientSecret == "" || c.GmailRefreshToken == "" {
		errs = append(errs, errors.New("GMAIL_CLIENT_ID, GMAIL_CLIENT_SECRET and GMAIL_REFRESH_TOKEN are required"))
	}

	if c.SMSEnabled && c.SMSGatewayToken == "" {
		errs = append(errs, errors.New("SMS_GATEWAY_TOKEN is required when SMS is enabled"))
	}

	return errors.Join(errs...)
}

// parseDuration accepts Go durations ("90s", "10m") or plain seconds ("30")
func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(value)
}
