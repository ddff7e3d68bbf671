package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/config"
)

// Config holds all configuration for the statelegemail service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Legislator directory / metadata API
	OpenStatesBaseURL string `env:"OPENSTATES_BASE_URL" envDefault:"http://openstates.org/api/v1"`
	OpenStatesAPIKey  string `env:"OPENSTATES_API_KEY"`

	// Geocoding backend. An empty base URL means no geocoding capability is
	// configured and every resolution aborts with zero recipients.
	GeocoderBaseURL string `env:"GEOCODER_BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`
	GeocoderEmail   string `env:"GEOCODER_EMAIL"`
	Country         string `env:"GEOCODER_COUNTRY" envDefault:"United States"`

	// Redis (region config settings store)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// RegionConfigTTL bounds the lifetime of cached region configs.
	// Zero means cached configs never expire.
	RegionConfigTTL time.Duration `env:"REGION_CONFIG_TTL" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// DispatchWorkers bounds concurrent letter sends per signature.
	DispatchWorkers int `env:"DISPATCH_WORKERS" envDefault:"4"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load statelegemail config: %w", err)
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
	if c.DispatchWorkers < 1 {
		return fmt.Errorf("invalid dispatch worker count: %d", c.DispatchWorkers)
	}
	if c.RegionConfigTTL < 0 {
		return fmt.Errorf("invalid region config TTL: %s", c.RegionConfigTTL)
	}
	return nil
}
