package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_TeeOffConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("TEEOFF_BASE_URL", "http://test-teeoff:9090")
	os.Setenv("TEEOFF_TIMEOUT", "3s")
	defer func() {
		os.Unsetenv("TEEOFF_BASE_URL")
		os.Unsetenv("TEEOFF_TIMEOUT")
	}()

	// Load config
	cfg, err := Load()
	assert.NoError(t, err)

	// Verify TeeOff config
	assert.Equal(t, "http://test-teeoff:9090", cfg.TeeOff.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.TeeOff.Timeout)
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("TEEOFF_BASE_URL")
	os.Unsetenv("TEEOFF_TIMEOUT")
	os.Unsetenv("POLL_INTERVAL")

	cfg, err := Load()
	assert.NoError(t, err)

	// Verify defaults
	assert.Equal(t, "https://www.teeoff.com", cfg.TeeOff.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.TeeOff.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Poll.Interval)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "tee",
		Password: "secret",
		Database: "teewatch",
		SSLMode:  "disable",
	}

	assert.Equal(t, "host=db port=5433 user=tee password=secret dbname=teewatch sslmode=disable", cfg.DatabaseDSN())
}
