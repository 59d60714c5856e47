package api

import (
	"net/http"

	"codeberg.org/mutker/energymon/internal/logger"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter wires the HTTP surface. When webDir is non-empty it is served as
// the dashboard shell for every path not claimed by an endpoint.
func NewRouter(h *Handler, webDir string) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/energy", h.Ingest).Methods(http.MethodPost)
	r.HandleFunc("/status", h.Status).Methods(http.MethodGet)
	r.HandleFunc("/control", h.Control).Methods(http.MethodPost)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", h.recorder.Handler()).Methods(http.MethodGet)

	if webDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(webDir)))
	}

	return r
}

// Wrap adds CORS for every origin and access logging at debug level.
func Wrap(next http.Handler) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	return handlers.CombinedLoggingHandler(logger.Writer(logger.DebugLevel), cors(next))
}
