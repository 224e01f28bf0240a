package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  host: "localhost"
  port: 5432
  user: "evfleet"
  password: "pw"
  database: "evfleet_test"
jwt:
  secret: "test-secret-key-at-least-32-chars-long"
storage:
  evidence_dir: "/tmp/evidence"
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddress())
	assert.Contains(t, cfg.GetDatabaseConnectionString(), "dbname=evfleet_test")
	assert.Contains(t, cfg.GetDatabaseConnectionString(), "sslmode=disable")

	// defaults
	assert.Equal(t, int64(5000), cfg.Penalty.LateFeePerDayCents)
	assert.Equal(t, int64(10000), cfg.Penalty.ExcessUsageSurchargeCents)
	assert.Equal(t, 60, cfg.Redis.TTLSeconds)
	assert.NotEmpty(t, cfg.Scheduler.SendReturnReminders)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(writeTempConfig(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("MissingJWTSecret", func(t *testing.T) {
		_, err := Load(writeTempConfig(t, `
server:
  port: 8080
database:
  host: "localhost"
  user: "u"
  database: "d"
storage:
  evidence_dir: "/tmp/e"
`))
		assert.Error(t, err)
	})

	t.Run("ShortJWTSecret", func(t *testing.T) {
		_, err := Load(writeTempConfig(t, `
server:
  port: 8080
database:
  host: "localhost"
  user: "u"
  database: "d"
jwt:
  secret: "short"
storage:
  evidence_dir: "/tmp/e"
`))
		assert.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load("/does/not/exist.yaml")
		assert.Error(t, err)
	})
}
