package api

import (
	"encoding/json"
	"io"
	"net/http"

	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/ingest"
	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/metrics"
	"codeberg.org/mutker/energymon/internal/status"
	"codeberg.org/mutker/energymon/internal/telemetry"
)

const maxBodyBytes = 64 << 10

// Reply is the acknowledgment returned by the ingestion and control endpoints.
type Reply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Handler struct {
	store      *telemetry.Store
	ingest     *ingest.Service
	thresholds status.Thresholds
	recorder   metrics.Recorder
}

func NewHandler(store *telemetry.Store, thresholds status.Thresholds, recorder metrics.Recorder) *Handler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Handler{
		store:      store,
		ingest:     ingest.NewService(store, recorder),
		thresholds: thresholds,
		recorder:   recorder,
	}
}

// Ingest accepts a sample in any shape, coerces it and always answers 200.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	sample := telemetry.DecodeSample(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	h.ingest.Accept(metrics.SourceHTTP, sample)

	writeJSON(w, Reply{Status: "OK", Message: "Data received"})
}

// Status serves the derived view of the latest sample.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	h.recorder.StatusServed()

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, status.Derive(h.store.Get(), h.thresholds))
}

// Control acknowledges a command without acting on it.
func (h *Handler) Control(w http.ResponseWriter, r *http.Request) {
	var command any
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		// The command is acknowledged anyway, with whatever was read.
		logger.Debug().Err(err).Int("read_bytes", len(body)).Msg("Control body read failed")
	}
	if err := json.Unmarshal(body, &command); err != nil {
		command = string(body)
	}

	h.recorder.ControlReceived()
	logger.Info().Interface("command", command).Msg("Control command received")

	writeJSON(w, Reply{Status: "OK", Message: "Command received"})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.ErrorWithCode(errors.New().Wrap(errors.ErrEncodeReply, err)).Msg("failed to write reply")
	}
}
