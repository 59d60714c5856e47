package status_test

import (
	"encoding/json"
	"testing"

	"codeberg.org/mutker/energymon/internal/status"
	"codeberg.org/mutker/energymon/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = status.Thresholds{PerLoadLimit: 600, TotalLimit: 1200}

func TestDeriveTotalPower(t *testing.T) {
	for _, pair := range [][2]float64{{0, 0}, {700, 0}, {250.5, 349.5}, {1e6, 3}} {
		got := status.Derive(telemetry.Sample{PowerA: pair[0], PowerB: pair[1]}, defaults)
		assert.Equal(t, pair[0]+pair[1], got.Totals.TotalPower)
	}
}

func TestDerivePerLoadBoundary(t *testing.T) {
	tests := []struct {
		power float64
		want  status.State
	}{
		{0, status.Off},
		{599, status.Off},
		{600, status.Off},
		{600.001, status.On},
		{601, status.On},
	}

	for _, tt := range tests {
		got := status.Derive(telemetry.Sample{PowerA: tt.power, PowerB: tt.power}, defaults)
		assert.Equal(t, tt.want, got.Loads.FanA.State, "fanA at %v", tt.power)
		assert.Equal(t, tt.want, got.Loads.FanB.State, "fanB at %v", tt.power)
	}
}

func TestDeriveFanMirrorsSensor(t *testing.T) {
	// Both loads above the limit, but the sensor did not command the fan.
	got := status.Derive(telemetry.Sample{PowerA: 900, PowerB: 900, FanCommanded: false}, defaults)
	assert.Equal(t, status.On, got.Loads.FanA.State)
	assert.Equal(t, status.Off, got.Fan.State)

	got = status.Derive(telemetry.Sample{FanCommanded: true}, defaults)
	assert.Equal(t, status.Off, got.Loads.FanA.State)
	assert.Equal(t, status.On, got.Fan.State)
}

func TestDerivePlaceholders(t *testing.T) {
	got := status.Derive(telemetry.Sample{PowerA: 5000, PowerB: 5000, FanCommanded: true}, defaults)

	assert.False(t, got.Alert.Active)
	assert.Empty(t, got.Alert.Message)
	assert.Zero(t, got.Totals.EnergyTodayKWh)
	assert.False(t, got.AutoControlEnabled)
	assert.Equal(t, 600.0, got.Thresholds.FanPowerLimit)
	assert.Equal(t, 1200.0, got.Thresholds.TotalPowerLimit)
}

func TestStatusWireFormat(t *testing.T) {
	got := status.Derive(telemetry.Sample{PowerA: 700, FanCommanded: true}, defaults)

	b, err := json.Marshal(got)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"totals": {"total_power": 700, "energy_today_kWh": 0},
		"loads": {
			"fanA": {"power": 700, "state": "ON"},
			"fanB": {"power": 0, "state": "OFF"}
		},
		"fan": {"state": "ON"},
		"auto_control_enabled": false,
		"thresholds": {"fan_power_limit": 600, "total_power_limit": 1200},
		"alert": {"active": false}
	}`, string(b))
}
