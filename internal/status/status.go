// Package status derives the dashboard view of the latest telemetry sample.
package status

import "codeberg.org/mutker/energymon/internal/telemetry"

// State is the ON/OFF state of a load or of the fan controller.
type State string

const (
	On  State = "ON"
	Off State = "OFF"
)

func stateOf(on bool) State {
	if on {
		return On
	}
	return Off
}

// Thresholds are fixed for the lifetime of the process.
type Thresholds struct {
	PerLoadLimit float64 // mW
	TotalLimit   float64 // mW
}

// Status is the derived snapshot served on GET /status.
type Status struct {
	Totals             Totals          `json:"totals"`
	Loads              Loads           `json:"loads"`
	Fan                FanControl      `json:"fan"`
	AutoControlEnabled bool            `json:"auto_control_enabled"`
	Thresholds         ThresholdReport `json:"thresholds"`
	Alert              Alert           `json:"alert"`
}

type Totals struct {
	TotalPower     float64 `json:"total_power"` // mW
	EnergyTodayKWh float64 `json:"energy_today_kWh"`
}

type Loads struct {
	FanA Load `json:"fanA"`
	FanB Load `json:"fanB"`
}

type Load struct {
	Power float64 `json:"power"` // mW
	State State   `json:"state"`
}

type FanControl struct {
	State State `json:"state"`
}

type ThresholdReport struct {
	FanPowerLimit   float64 `json:"fan_power_limit"`
	TotalPowerLimit float64 `json:"total_power_limit"`
}

type Alert struct {
	Active  bool   `json:"active"`
	Message string `json:"message,omitempty"`
}

// Derive computes the status for a sample. It is pure.
//
// A load is ON only when its power is strictly above the per-load limit.
// The fan state mirrors the sensor's own decision and may disagree with the
// per-load states. Energy today is always zero here; integration happens in
// the dashboard client. The alert is never activated yet: no activation rule
// has been defined, so Active stays false.
func Derive(s telemetry.Sample, th Thresholds) Status {
	return Status{
		Totals: Totals{
			TotalPower:     s.PowerA + s.PowerB,
			EnergyTodayKWh: 0,
		},
		Loads: Loads{
			FanA: Load{Power: s.PowerA, State: stateOf(s.PowerA > th.PerLoadLimit)},
			FanB: Load{Power: s.PowerB, State: stateOf(s.PowerB > th.PerLoadLimit)},
		},
		Fan:                FanControl{State: stateOf(s.FanCommanded)},
		AutoControlEnabled: false,
		Thresholds: ThresholdReport{
			FanPowerLimit:   th.PerLoadLimit,
			TotalPowerLimit: th.TotalLimit,
		},
		Alert: Alert{Active: false},
	}
}
