package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("BATCH_SIZE", "250")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.False(t, cfg.ConfirmPendingOnFull)
	assert.Equal(t, "log", cfg.Mail.Transport)
	assert.Contains(t, cfg.DSN(), "host=db.internal")
	assert.Contains(t, cfg.DSN(), "dbname=tecotransit")
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "Africa/Lagos"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Lagos", loc.String())

	// the zone name must round-trip through LoadLocation for CRON_TZ
	again, err := time.LoadLocation(loc.String())
	require.NoError(t, err)
	assert.Equal(t, loc.String(), again.String())

	_, offset := time.Date(2024, 6, 2, 12, 0, 0, 0, loc).Zone()
	assert.Equal(t, 3600, offset)
}

func TestLocation_Invalid(t *testing.T) {
	cfg := &Config{Timezone: "Nowhere/Invalid"}
	_, err := cfg.Location()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nowhere/Invalid")
}
