// Package config loads and validates process configuration.
//
// All values are read once at startup. An invalid configuration is a fatal
// startup error, never a per-request error.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultTimeout = 10 * time.Second

	// Firefly III's own client guidance caps request timeouts at a minute;
	// anything larger is clamped rather than rejected.
	maxTimeout = 60 * time.Second
)

// Config contains all configuration for the mirror services
type Config struct {
	Addr string

	UpAccessToken   string
	UpWebhookSecret string

	FireflyAccessToken string
	FireflyBaseURL     string

	// AccountMap is the raw sourceID:destinationID pair list. It is parsed
	// and validated by the engine at startup.
	AccountMap string

	Timeout time.Duration

	// Optional history store. The store is disabled when DBHost is empty.
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
}

// Load reads configuration from the environment, with a best-effort .env
// overlay, and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:               ":" + envDefault("PORT", "8080"),
		UpAccessToken:      os.Getenv("UP_ACCESS_TOKEN"),
		UpWebhookSecret:    os.Getenv("UP_WEBHOOK_SECRET"),
		FireflyAccessToken: os.Getenv("FIREFLY_ACCESS_TOKEN"),
		FireflyBaseURL:     strings.TrimRight(os.Getenv("FIREFLY_BASE_URL"), "/"),
		AccountMap:         os.Getenv("ACCOUNT_MAP"),
		Timeout:            defaultTimeout,
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBHost:             os.Getenv("DB_HOST"),
		DBPort:             envDefault("DB_PORT", "5432"),
		DBName:             os.Getenv("DB_NAME"),
	}

	if raw := os.Getenv("REQUEST_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT_SECONDS: %q", raw)
		}
		cfg.Timeout = time.Duration(seconds) * time.Second
	}
	if cfg.Timeout > maxTimeout {
		cfg.Timeout = maxTimeout
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	required := map[string]string{
		"UP_ACCESS_TOKEN":      c.UpAccessToken,
		"UP_WEBHOOK_SECRET":    c.UpWebhookSecret,
		"FIREFLY_ACCESS_TOKEN": c.FireflyAccessToken,
		"FIREFLY_BASE_URL":     c.FireflyBaseURL,
		"ACCOUNT_MAP":          c.AccountMap,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("missing required configuration: %s", name)
		}
	}

	u, err := url.Parse(c.FireflyBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid FIREFLY_BASE_URL: %q", c.FireflyBaseURL)
	}

	return nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
