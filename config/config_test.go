package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Booking.Slot())
	assert.Equal(t, "02/01/2006 15:04", cfg.Booking.TimeLayout)
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
storage:
  driver: postgres
database:
  host: db
  port: 5432
  user: resto
  password: secret
  name: resto
  ssl_mode: disable
booking:
  slot_minutes: 90
  revalidate_on_update: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("RESTO_DB_HOST", "db.internal")
	t.Setenv("RESTO_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RESTO_EVENTS_BROKER", "rabbitmq")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 90*time.Minute, cfg.Booking.Slot())
	assert.True(t, cfg.Booking.RevalidateOnUpdate)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "rabbitmq", cfg.Events.Broker)
	assert.Equal(t, "host=db.internal port=5432 user=resto password=secret dbname=resto sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [broken"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
