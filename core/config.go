package core

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the dinehall client.
// It supports three-layer configuration priority:
//  1. Default values (lowest priority)
//  2. Environment variables (medium priority)
//  3. Functional options (highest priority)
//
// Example usage:
//
//	cfg, err := NewConfig(
//	    WithAdminBaseURL("https://admin.example.com/api"),
//	    WithStorageProvider("redis"),
//	    WithRedisURL("redis://localhost:6379"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
type Config struct {
	// Backends configuration (the two remote collaborators)
	Backends BackendsConfig `yaml:"backends"`

	// Auth configuration
	Auth AuthConfig `yaml:"auth"`

	// Restaurant display information shown by the client
	Restaurant RestaurantConfig `yaml:"restaurant"`

	// Storage configuration for the persistent store adapter
	Storage StorageConfig `yaml:"storage"`

	// HTTP client configuration
	HTTP HTTPConfig `yaml:"http"`

	// Checkout configuration
	Checkout CheckoutConfig `yaml:"checkout"`

	// Booking configuration
	Booking BookingConfig `yaml:"booking"`

	// Telemetry configuration (optional module)
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// BackendsConfig contains the base URLs of the two remote backends.
// The admin backend owns the menu, tables, and the staff-facing order
// feed; the customer backend owns auth, customer orders, and
// reservations.
type BackendsConfig struct {
	AdminBaseURL    string `yaml:"admin_base_url" env:"DINEHALL_ADMIN_URL" default:"http://localhost:4000/api"`
	CustomerBaseURL string `yaml:"customer_base_url" env:"DINEHALL_CUSTOMER_URL" default:"http://localhost:5000/api"`
}

// AuthConfig contains identity provider settings.
type AuthConfig struct {
	GoogleClientID string `yaml:"google_client_id" env:"DINEHALL_GOOGLE_CLIENT_ID"`
}

// RestaurantConfig contains deployment-specific display contact info.
type RestaurantConfig struct {
	Name    string `yaml:"name" env:"DINEHALL_RESTAURANT_NAME" default:"Dinehall"`
	Phone   string `yaml:"phone" env:"DINEHALL_RESTAURANT_PHONE"`
	Email   string `yaml:"email" env:"DINEHALL_RESTAURANT_EMAIL"`
	Address string `yaml:"address" env:"DINEHALL_RESTAURANT_ADDRESS"`
}

// StorageConfig selects and configures the persistent store adapter.
// Provider is one of "file", "memory", "redis".
type StorageConfig struct {
	Provider  string `yaml:"provider" env:"DINEHALL_STORAGE_PROVIDER" default:"file"`
	Path      string `yaml:"path" env:"DINEHALL_STORAGE_PATH"`
	RedisURL  string `yaml:"redis_url" env:"DINEHALL_REDIS_URL,REDIS_URL"`
	Namespace string `yaml:"namespace" env:"DINEHALL_STORAGE_NAMESPACE" default:"dinehall"`
}

// HTTPConfig contains HTTP client configuration.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"DINEHALL_HTTP_TIMEOUT" default:"30s"`
}

// CheckoutConfig contains the pricing constants applied at checkout.
// The backends re-derive authoritative totals; these exist so the client
// can show the same numbers the kitchen will.
type CheckoutConfig struct {
	TaxRate          float64 `yaml:"tax_rate" env:"DINEHALL_TAX_RATE" default:"0.05"`
	ServiceFee       float64 `yaml:"service_fee" env:"DINEHALL_SERVICE_FEE" default:"12"`
	EstimatedMinutes int     `yaml:"estimated_minutes" env:"DINEHALL_ESTIMATED_MINUTES" default:"20"`
}

// BookingConfig contains reservation wizard settings.
type BookingConfig struct {
	// NoticeTTL is how long a user-visible message stays on screen
	// before it auto-clears.
	NoticeTTL time.Duration `yaml:"notice_ttl" env:"DINEHALL_NOTICE_TTL" default:"4s"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"DINEHALL_TELEMETRY_ENABLED" default:"false"`
	ServiceName string `yaml:"service_name" env:"DINEHALL_TELEMETRY_SERVICE" default:"dinehall-client"`
	// Endpoint is the OTLP gRPC collector address. Empty selects the
	// stdout exporter.
	Endpoint string `yaml:"endpoint" env:"DINEHALL_OTEL_ENDPOINT,OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"DINEHALL_LOG_LEVEL,LOG_LEVEL" default:"info"`
	Format string `yaml:"format" env:"DINEHALL_LOG_FORMAT" default:"text"`
}

// Option is a functional option for configuring the client
type Option func(*Config)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backends: BackendsConfig{
			AdminBaseURL:    "http://localhost:4000/api",
			CustomerBaseURL: "http://localhost:5000/api",
		},
		Restaurant: RestaurantConfig{
			Name: "Dinehall",
		},
		Storage: StorageConfig{
			Provider:  "file",
			Namespace: "dinehall",
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Checkout: CheckoutConfig{
			TaxRate:          0.05,
			ServiceFee:       12,
			EstimatedMinutes: 20,
		},
		Booking: BookingConfig{
			NoticeTTL: 4 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "dinehall-client",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromEnv applies environment variable overrides on top of the
// current values. Unset variables leave the existing value untouched.
func (c *Config) LoadFromEnv() {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&c.Backends.AdminBaseURL, "DINEHALL_ADMIN_URL")
	setString(&c.Backends.CustomerBaseURL, "DINEHALL_CUSTOMER_URL")
	setString(&c.Auth.GoogleClientID, "DINEHALL_GOOGLE_CLIENT_ID")
	setString(&c.Restaurant.Name, "DINEHALL_RESTAURANT_NAME")
	setString(&c.Restaurant.Phone, "DINEHALL_RESTAURANT_PHONE")
	setString(&c.Restaurant.Email, "DINEHALL_RESTAURANT_EMAIL")
	setString(&c.Restaurant.Address, "DINEHALL_RESTAURANT_ADDRESS")
	setString(&c.Storage.Provider, "DINEHALL_STORAGE_PROVIDER")
	setString(&c.Storage.Path, "DINEHALL_STORAGE_PATH")
	setString(&c.Storage.RedisURL, "DINEHALL_REDIS_URL", "REDIS_URL")
	setString(&c.Storage.Namespace, "DINEHALL_STORAGE_NAMESPACE")
	setString(&c.Telemetry.Endpoint, "DINEHALL_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&c.Telemetry.ServiceName, "DINEHALL_TELEMETRY_SERVICE")
	setString(&c.Logging.Level, "DINEHALL_LOG_LEVEL", "LOG_LEVEL")
	setString(&c.Logging.Format, "DINEHALL_LOG_FORMAT")

	if v := os.Getenv("DINEHALL_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTP.Timeout = d
		}
	}
	if v := os.Getenv("DINEHALL_NOTICE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Booking.NoticeTTL = d
		}
	}
	if v := os.Getenv("DINEHALL_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = parseBool(v)
	}
}

// LoadFromFile merges a YAML configuration file into the current values.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	for _, base := range []struct {
		name  string
		value string
	}{
		{"backends.admin_base_url", c.Backends.AdminBaseURL},
		{"backends.customer_base_url", c.Backends.CustomerBaseURL},
	} {
		if base.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingConfiguration, base.name)
		}
		if _, err := url.ParseRequestURI(base.value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, base.name, err)
		}
	}

	switch c.Storage.Provider {
	case "file", "memory", "redis":
	default:
		return fmt.Errorf("%w: storage.provider %q (want file, memory, or redis)", ErrInvalidConfiguration, c.Storage.Provider)
	}
	if c.Storage.Provider == "redis" && c.Storage.RedisURL == "" {
		return fmt.Errorf("%w: storage.redis_url", ErrMissingConfiguration)
	}

	if c.Checkout.TaxRate < 0 || c.Checkout.TaxRate >= 1 {
		return fmt.Errorf("%w: checkout.tax_rate %v", ErrInvalidConfiguration, c.Checkout.TaxRate)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("%w: http.timeout must be positive", ErrInvalidConfiguration)
	}
	return nil
}

// NewConfig builds a Config by layering defaults, environment variables,
// and functional options, then validating the result.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()
	cfg.LoadFromEnv()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithAdminBaseURL sets the admin backend base URL
func WithAdminBaseURL(u string) Option {
	return func(c *Config) { c.Backends.AdminBaseURL = u }
}

// WithCustomerBaseURL sets the customer backend base URL
func WithCustomerBaseURL(u string) Option {
	return func(c *Config) { c.Backends.CustomerBaseURL = u }
}

// WithGoogleClientID sets the Google identity client id
func WithGoogleClientID(id string) Option {
	return func(c *Config) { c.Auth.GoogleClientID = id }
}

// WithStorageProvider selects the persistent store adapter driver
func WithStorageProvider(provider string) Option {
	return func(c *Config) { c.Storage.Provider = provider }
}

// WithStoragePath sets the directory used by the file store
func WithStoragePath(path string) Option {
	return func(c *Config) { c.Storage.Path = path }
}

// WithRedisURL sets the Redis connection URL for the redis store
func WithRedisURL(u string) Option {
	return func(c *Config) { c.Storage.RedisURL = u }
}

// WithHTTPTimeout sets the HTTP client timeout
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Config) { c.HTTP.Timeout = d }
}

// WithTelemetry enables telemetry with the given OTLP endpoint
func WithTelemetry(enabled bool, endpoint string) Option {
	return func(c *Config) {
		c.Telemetry.Enabled = enabled
		c.Telemetry.Endpoint = endpoint
	}
}

// WithLogLevel sets the minimum log level
func WithLogLevel(level string) Option {
	return func(c *Config) { c.Logging.Level = level }
}

// WithNoticeTTL sets how long wizard messages stay visible
func WithNoticeTTL(d time.Duration) Option {
	return func(c *Config) { c.Booking.NoticeTTL = d }
}

// WithConfigFile merges a YAML file when NewConfig runs. File values
// sit between environment variables and later options.
func WithConfigFile(path string) Option {
	return func(c *Config) {
		if path == "" {
			return
		}
		if err := c.LoadFromFile(path); err != nil {
			// Surfaced by Validate when required values end up missing.
			fmt.Fprintf(os.Stderr, "dinehall: config file ignored: %v\n", err)
		}
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
