package telemetry_test

import (
	"strings"
	"testing"

	"codeberg.org/mutker/energymon/internal/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePower(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"number", 700.0, 700},
		{"fractional", 12.5, 12.5},
		{"zero", 0.0, 0},
		{"missing", nil, 0},
		{"false", false, 0},
		{"true", true, 0},
		{"empty string", "", 0},
		{"numeric string", "42", 42},
		{"padded numeric string", " 42 ", 42},
		{"garbage string", "abc", 0},
		{"object", map[string]any{"x": 1.0}, 0},
		{"negative passes through", -5.0, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]any{}
			if tt.in != nil {
				raw["pA"] = tt.in
			}
			assert.Equal(t, tt.want, telemetry.Normalize(raw).PowerA)
		})
	}
}

func TestNormalizeFan(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"bool true", true, true},
		{"number 1", 1.0, true},
		{"string true", "true", true},
		{"string 1", "1", true},
		{"bool false", false, false},
		{"number 0", 0.0, false},
		{"number 2", 2.0, false},
		{"string TRUE", "TRUE", false},
		{"string yes", "yes", false},
		{"string on", "on", false},
		{"null", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, telemetry.Normalize(map[string]any{"fan": tt.in}).FanCommanded)
		})
	}

	assert.False(t, telemetry.Normalize(map[string]any{}).FanCommanded, "absent")
}

func TestNormalizeTimestamp(t *testing.T) {
	assert.Equal(t, int64(1700000000123), telemetry.Normalize(map[string]any{"t": 1700000000123.0}).Timestamp)
	assert.Equal(t, int64(0), telemetry.Normalize(map[string]any{"t": false}).Timestamp)
	assert.Equal(t, int64(0), telemetry.Normalize(nil).Timestamp)
	assert.Equal(t, int64(1500), telemetry.Normalize(map[string]any{"t": 1500.9}).Timestamp)
	assert.Equal(t, int64(-5), telemetry.Normalize(map[string]any{"t": "-5"}).Timestamp)
}

func TestNormalizeTimestampOutOfRange(t *testing.T) {
	for _, in := range []any{1e30, -1e30, 9.3e18, "1e300"} {
		assert.Equal(t, int64(0), telemetry.Normalize(map[string]any{"t": in}).Timestamp, "%v", in)
	}

	got := telemetry.DecodeSample(strings.NewReader(`{"t": 1e30, "pA": 5}`))
	assert.Equal(t, telemetry.Sample{PowerA: 5}, got)
}

func TestDecodeSample(t *testing.T) {
	got := telemetry.DecodeSample(strings.NewReader(`{"t": 1000, "pA": 700, "pB": 0, "fan": "1"}`))

	assert.Equal(t, telemetry.Sample{Timestamp: 1000, PowerA: 700, PowerB: 0, FanCommanded: true}, got)
}

func TestDecodeSampleMissingFieldEqualsZero(t *testing.T) {
	missing := telemetry.DecodeSample(strings.NewReader(`{"pA": 300, "fan": true}`))
	zero := telemetry.DecodeSample(strings.NewReader(`{"pA": 300, "pB": 0, "fan": true}`))

	assert.Equal(t, zero, missing)
}

func TestDecodeSampleMalformed(t *testing.T) {
	for _, body := range []string{"", "not json", "[1,2,3]", `"pA"`, `{"pA": 1`} {
		assert.Equal(t, telemetry.Sample{}, telemetry.DecodeSample(strings.NewReader(body)), body)
	}
}
