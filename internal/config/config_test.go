package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "enrollments.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, "full", cfg.Enrollment.Variant)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("ADDR", ":9090")
	t.Setenv("PUBLIC_URL", "https://enroll.example.com/")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("DB_BUSY_TIMEOUT", "250ms")
	t.Setenv("ENROLLMENT_VARIANT", "Reduced")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "https://enroll.example.com", cfg.PublicURL)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Database.BusyTimeout)
	assert.Equal(t, "reduced", cfg.Enrollment.Variant)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string][2]string{
		"variant":    {"ENROLLMENT_VARIANT", "everything"},
		"log level":  {"LOG_LEVEL", "loud"},
		"log format": {"LOG_FORMAT", "xml"},
		"public url": {"PUBLIC_URL", "not a url"},
		"env":        {"ENV", "staging"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
