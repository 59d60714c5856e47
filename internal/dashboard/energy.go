package dashboard

import "time"

const msPerHour = 3_600_000

// EnergyIntegrator estimates consumed energy from successive power samples.
//
// Every sample after the first adds P * interval, where interval is the
// nominal poll period and not the measured time between polls. Missed or
// late ticks therefore make the estimate drift; that is accepted.
type EnergyIntegrator struct {
	interval   time.Duration
	cumulative float64 // mWh
	lastSample time.Time
	started    bool
}

func NewEnergyIntegrator(interval time.Duration) *EnergyIntegrator {
	return &EnergyIntegrator{interval: interval}
}

// Observe records one successful poll and returns the running total in mWh.
func (e *EnergyIntegrator) Observe(powerMW float64, at time.Time) float64 {
	if e.started {
		e.cumulative += powerMW * (float64(e.interval.Milliseconds()) / msPerHour)
	}
	e.started = true
	e.lastSample = at

	return e.cumulative
}

// Cumulative returns the energy accumulated so far in mWh.
func (e *EnergyIntegrator) Cumulative() float64 {
	return e.cumulative
}

// LastSampleTime reports when the last sample was observed, if any.
func (e *EnergyIntegrator) LastSampleTime() (time.Time, bool) {
	return e.lastSample, e.started
}
