package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"codeberg.org/mutker/energymon/internal/api"
	"codeberg.org/mutker/energymon/internal/config"
	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/ingest"
	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/metrics"
	"codeberg.org/mutker/energymon/internal/status"
	"codeberg.org/mutker/energymon/internal/telemetry"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load(os.Args[1:])
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("Exiting...")
}

func run(ctx context.Context) error {
	errFactory := errors.New()

	store := telemetry.NewStore()
	recorder := metrics.New()
	thresholds := status.Thresholds{
		PerLoadLimit: cfg.PerLoadLimit,
		TotalLimit:   cfg.TotalLimit,
	}

	handler := api.NewHandler(store, thresholds, recorder)
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		Handler:           api.Wrap(api.NewRouter(handler, cfg.WebDir)),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	if cfg.MQTT.Enabled {
		bridge := ingest.NewMQTT(cfg.MQTT, ingest.NewService(store, recorder))
		if err := bridge.Start(ctx); err != nil {
			// HTTP ingestion still works without the broker.
			logger.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("MQTT bridge unavailable")
		} else {
			logger.Info().Str("broker", cfg.MQTT.Broker).Str("topic", cfg.MQTT.Topic).Msg("MQTT bridge connected")
		}
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return errFactory.Wrap(errors.ErrListen, err)
	}

	logStartup()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return errFactory.Wrap(errors.ErrListen, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errFactory.Wrap(errors.ErrServeShutdown, err)
	}

	return nil
}

func logStartup() {
	base := fmt.Sprintf("http://localhost:%d", cfg.Port)

	logger.Info().
		Float64("per_load_limit_mw", cfg.PerLoadLimit).
		Float64("total_limit_mw", cfg.TotalLimit).
		Bool("mqtt", cfg.MQTT.Enabled).
		Msgf("Server listening on %s", base)

	if cfg.WebDir != "" {
		logger.Info().Msgf("Dashboard: %s/", base)
	}
	logger.Info().Msgf("Ingestion: POST %s/api/energy", base)
	logger.Info().Msgf("Status:    GET  %s/status", base)
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
