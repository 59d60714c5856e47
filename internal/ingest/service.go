// Package ingest writes normalized sensor samples into the reading store.
// Both the HTTP endpoint and the MQTT bridge feed samples through Service.
package ingest

import (
	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/metrics"
	"codeberg.org/mutker/energymon/internal/telemetry"
)

type Service struct {
	store    *telemetry.Store
	recorder metrics.Recorder
}

func NewService(store *telemetry.Store, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Service{store: store, recorder: recorder}
}

// Accept replaces the held sample. It never fails.
func (s *Service) Accept(source string, sample telemetry.Sample) {
	s.store.Replace(sample)
	s.recorder.SampleIngested(source, sample)

	logger.Info().
		Str("source", source).
		Int64("timestamp", sample.Timestamp).
		Float64("power_a_mw", sample.PowerA).
		Float64("power_b_mw", sample.PowerB).
		Str("fan", fanLabel(sample.FanCommanded)).
		Msg("Received sample")
}

func fanLabel(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
