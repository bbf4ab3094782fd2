package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeaveLimits(t *testing.T) {
	limits, err := ParseLeaveLimits("Sick:5, Emergency:3 ,Vacation:15")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Sick": 5, "Emergency": 3, "Vacation": 15}, limits)

	for _, raw := range []string{"Sick", "Sick:x", ":5", "Sick:-1"} {
		_, err := ParseLeaveLimits(raw)
		assert.Error(t, err, raw)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Store.CallTimeout)
	assert.Equal(t, 5, cfg.Leave.Limits["Sick"])
	assert.Equal(t, 12, cfg.Leave.Limits["Annual"])
	assert.True(t, cfg.Payroll.OvertimeRatePerHour.IsZero())
	assert.Equal(t, 8080, cfg.App.Port)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("PAYROLL_OVERTIME_RATE_PER_HOUR", "150.50")
	t.Setenv("PAYROLL_HOLIDAYS", "2025-01-01,2025-12-25")
	t.Setenv("LEAVE_LIMITS", "Sick:7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "150.5", cfg.Payroll.OvertimeRatePerHour.String())
	assert.Equal(t, []string{"2025-01-01", "2025-12-25"}, cfg.Payroll.Holidays)
	assert.Equal(t, map[string]int{"Sick": 7}, cfg.Leave.Limits)
}

func TestValidate(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PASSWORD is required")

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET_KEY is required")
}
