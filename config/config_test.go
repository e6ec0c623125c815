package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":9090"
database:
  driver: memory
kafka:
  brokers: ["kafka:9092"]
booking:
  flights_cache_ttl_seconds: 15
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 15, cfg.Booking.FlightsCacheTTL)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "booking-events", cfg.Kafka.BookingEventsTopic)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().HTTP, cfg.HTTP)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := LoadConfig(writeConfig(t, "database:\n  password: plain\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "database:\n  driver: oracle\n"))
	assert.ErrorContains(t, err, "unknown database driver")

	_, err = LoadConfig(writeConfig(t, "http: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", d.DSN())
}
