package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DEV_DB_NAME", "bioponto_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDev())
	assert.Equal(t, "bioponto_test", cfg.Database.DBName)
	assert.Equal(t, "bridge", cfg.Device.Driver)
	assert.Equal(t, 15*time.Second, cfg.Device.CaptureTimeout)
	assert.Equal(t, 3, cfg.Registration.MaxAttempts)
	assert.Equal(t, "0 3 * * *", cfg.Cron.StaleSweepSpec)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
	assert.Same(t, cfg, AppConfig)
}

func TestLoadProdPrefix(t *testing.T) {
	t.Setenv("APP_MODE", "prod")
	t.Setenv("PROD_DB_HOST", "db.internal")
	t.Setenv("DEV_DB_HOST", "localhost")
	t.Setenv("KIOSK_API_KEY_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad mode", map[string]string{"APP_MODE": "staging"}},
		{"bad device driver", map[string]string{"DEVICE_DRIVER": "usb"}},
		{"api notify without url", map[string]string{"NOTIFY_DRIVER": "api"}},
		{"smtp notify without host", map[string]string{"NOTIFY_DRIVER": "smtp"}},
		{"prod without kiosk key", map[string]string{"APP_MODE": "prod"}},
		{"bad timezone", map[string]string{"TZ_NAME": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDurationFallback(t *testing.T) {
	t.Setenv("DEVICE_CAPTURE_TIMEOUT", "soon")
	assert.Equal(t, 5*time.Second, getDuration("DEVICE_CAPTURE_TIMEOUT", 5*time.Second))

	t.Setenv("DEVICE_CAPTURE_TIMEOUT", "2m")
	assert.Equal(t, 2*time.Minute, getDuration("DEVICE_CAPTURE_TIMEOUT", 5*time.Second))
}

func TestBuildDSNEscapesLocation(t *testing.T) {
	dsn := buildDSN(DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "3306", DBName: "d"}, "America/Sao_Paulo")
	assert.Contains(t, dsn, "loc=America%2FSao_Paulo")
	assert.Contains(t, dsn, "parseTime=True")
}
