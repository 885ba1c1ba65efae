package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/luciodale/booking-portal-sub002/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load(config.NewViper())
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Fees.DefaultPercent)
	assert.Equal(t, 21, cfg.Fees.WithholdingPercent)
	assert.Equal(t, 5*time.Minute, cfg.Rates.CacheTTL)
	assert.Equal(t, "EUR", cfg.Booking.Currency)
	assert.Equal(t, 365, cfg.Booking.MaxNights)
	assert.Equal(t, config.NotificationModeNone, cfg.Notification.Mode)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FEES_DEFAULT_PERCENT", "15")
	t.Setenv("BOOKING_CURRENCY", "chf")
	t.Setenv("NOTIFICATION_MODE", "Queue")

	cfg, err := config.Load(config.NewViper())
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Fees.DefaultPercent)
	assert.Equal(t, "CHF", cfg.Booking.Currency)
	assert.Equal(t, config.NotificationModeQueue, cfg.Notification.Mode)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := "fees:\n  default_percent: 12\nrates:\n  cache_ttl: 2m\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := config.Load(config.NewViper())
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Fees.DefaultPercent)
	assert.Equal(t, 2*time.Minute, cfg.Rates.CacheTTL)
}
