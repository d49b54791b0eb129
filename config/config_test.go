package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  port: 5432
  user: drone
  password: secret
  name: deliveries
  ssl_mode: disable
kafka:
  brokers: ["localhost:9092"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "delivery-start-time-reached", cfg.Kafka.DeliveryStartTopic)
	assert.Equal(t, "drone-status-changed", cfg.Kafka.DroneStatusTopic)
	assert.Equal(t, 15*time.Minute, cfg.Booking.ReturnBuffer())
	assert.Equal(t, time.Minute, cfg.Booking.MinLeadTime())
	assert.Equal(t, 10, cfg.Booking.FleetSize)
	assert.Equal(t, 48.857950, cfg.Simulator.HeadOfficeLatitude)
	assert.Equal(t, 2.295390, cfg.Simulator.HeadOfficeLongitude)
	assert.Equal(t, 5000, cfg.Simulator.LoadingMillis)
	assert.Equal(t, "straight", cfg.Route.Provider)
	assert.Equal(t, "host=localhost port=5432 user=drone password=secret dbname=deliveries sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `
booking:
  return_buffer_minutes: 20
  min_lead_time_minutes: 5
simulator:
  head_office_latitude: 52.52
  head_office_longitude: 13.40
  waypoint_ms: 10
route:
  provider: ors
  api_key: key
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Minute, cfg.Booking.ReturnBuffer())
	assert.Equal(t, 5*time.Minute, cfg.Booking.MinLeadTime())
	assert.Equal(t, 52.52, cfg.Simulator.HeadOfficeLatitude)
	assert.Equal(t, 10, cfg.Simulator.WaypointMillis)
	assert.Equal(t, "ors", cfg.Route.Provider)
	assert.Equal(t, "key", cfg.Route.APIKey)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	path := writeConfig(t, "http: [not a map")
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config")
}
