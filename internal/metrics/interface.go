package metrics

import (
	"net/http"

	"codeberg.org/mutker/energymon/internal/telemetry"
)

// Recorder receives server-side events worth exposing on /metrics.
type Recorder interface {
	SampleIngested(source string, s telemetry.Sample)
	StatusServed()
	ControlReceived()
	Handler() http.Handler
}

// Ingestion sources
const (
	SourceHTTP = "http"
	SourceMQTT = "mqtt"
)
