package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "http://openstates.org/api/v1", cfg.OpenStatesBaseURL)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.GeocoderBaseURL)
	assert.Equal(t, "United States", cfg.Country)
	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, 6379, cfg.RedisPort)
	assert.Equal(t, time.Duration(0), cfg.RegionConfigTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 4, cfg.DispatchWorkers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("OPENSTATES_API_KEY", "test-key")
	t.Setenv("GEOCODER_BASE_URL", "")
	t.Setenv("REGION_CONFIG_TTL", "12h")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "test-key", cfg.OpenStatesAPIKey)
	assert.Empty(t, cfg.GeocoderBaseURL)
	assert.Equal(t, 12*time.Hour, cfg.RegionConfigTTL)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidWorkers(t *testing.T) {
	t.Setenv("DISPATCH_WORKERS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid dispatch worker count")
}
