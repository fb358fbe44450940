package config

import (
	"fmt"
	"net/url"

	pkgconfig "github.com/utafrali/EcommerceGo/pkg/config"
)

// Config holds all configuration for the payment service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"PAYMENT_HTTP_PORT" envDefault:"8005"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"true"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Outbound connector calls
	ConnectorTimeoutSeconds int `env:"CONNECTOR_TIMEOUT_SECONDS" envDefault:"30"`
	ConnectorMaxRetries     int `env:"CONNECTOR_MAX_RETRIES" envDefault:"2"`

	// Circuit breaker settings for connector calls
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Bluesnap is filled from BLUESNAP_* variables after the main parse.
	Bluesnap *ConnectorConfig
}

// ConnectorConfig holds the endpoint and credentials of one payment connector.
// The same struct is filled once per connector under its own prefix.
type ConnectorConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	BaseURL string `env:"BASE_URL" envDefault:"https://sandbox.bluesnap.com"`
	APIKey  string `env:"API_KEY"`
	Key1    string `env:"KEY1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load payment config: %w", err)
	}
	cfg.Bluesnap = &ConnectorConfig{}
	if err := pkgconfig.LoadWithPrefix(cfg.Bluesnap, "BLUESNAP_"); err != nil {
		return nil, fmt.Errorf("load payment config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.ConnectorTimeoutSeconds < 1 {
		return fmt.Errorf("CONNECTOR_TIMEOUT_SECONDS must be positive, got %d", c.ConnectorTimeoutSeconds)
	}
	if c.ConnectorMaxRetries < 0 {
		return fmt.Errorf("CONNECTOR_MAX_RETRIES must not be negative, got %d", c.ConnectorMaxRetries)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1.0 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0.0, 1.0], got %f", c.CBFailureRatio)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.Bluesnap != nil && c.Bluesnap.Enabled {
		if err := c.Bluesnap.validate("BLUESNAP_"); err != nil {
			return err
		}
	}
	return nil
}

func (c *ConnectorConfig) validate(prefix string) error {
	if c.BaseURL == "" {
		return fmt.Errorf("%sBASE_URL is required", prefix)
	}
	u, err := url.ParseRequestURI(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid %sBASE_URL %q: %w", prefix, c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %sBASE_URL %q: scheme must be http or https", prefix, c.BaseURL)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%sAPI_KEY is required", prefix)
	}
	return nil
}
