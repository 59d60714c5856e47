package metrics

import (
	"net/http"

	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "energymon"

type prometheusRecorder struct {
	registry        *prometheus.Registry
	samplesIngested *prometheus.CounterVec
	loadPower       *prometheus.GaugeVec
	fanCommanded    prometheus.Gauge
	sampleTimestamp prometheus.Gauge
	statusRequests  prometheus.Counter
	controlCommands prometheus.Counter
}

// No-op implementation
type noopRecorder struct{}

// New returns a Recorder backed by its own Prometheus registry.
func New() Recorder {
	r := &prometheusRecorder{
		registry: prometheus.NewRegistry(),
		samplesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_ingested_total",
			Help:      "Telemetry samples written to the reading store.",
		}, []string{"source"}),
		loadPower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "load_power_mw",
			Help:      "Power of each load in the latest sample, in mW.",
		}, []string{"load"}),
		fanCommanded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fan_commanded",
			Help:      "1 when the sensor reports the fan as commanded on.",
		}),
		sampleTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_sample_timestamp_ms",
			Help:      "Sensor-supplied timestamp of the latest sample.",
		}),
		statusRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_requests_total",
			Help:      "Derived status snapshots served.",
		}),
		controlCommands: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "control_commands_total",
			Help:      "Control commands received.",
		}),
	}

	r.registry.MustRegister(
		r.samplesIngested,
		r.loadPower,
		r.fanCommanded,
		r.sampleTimestamp,
		r.statusRequests,
		r.controlCommands,
	)

	logger.Debug().Msg("Metrics recorder initialized")

	return r
}

// NewNoop returns a Recorder that discards everything.
func NewNoop() Recorder {
	return noopRecorder{}
}

func (r *prometheusRecorder) SampleIngested(source string, s telemetry.Sample) {
	r.samplesIngested.WithLabelValues(source).Inc()
	r.loadPower.WithLabelValues("fanA").Set(s.PowerA)
	r.loadPower.WithLabelValues("fanB").Set(s.PowerB)
	r.fanCommanded.Set(boolToFloat(s.FanCommanded))
	r.sampleTimestamp.Set(float64(s.Timestamp))
}

func (r *prometheusRecorder) StatusServed() {
	r.statusRequests.Inc()
}

func (r *prometheusRecorder) ControlReceived() {
	r.controlCommands.Inc()
}

func (r *prometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (noopRecorder) SampleIngested(string, telemetry.Sample) {}
func (noopRecorder) StatusServed()                           {}
func (noopRecorder) ControlReceived()                        {}

func (noopRecorder) Handler() http.Handler {
	return http.NotFoundHandler()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
