package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"codeberg.org/mutker/energymon/internal/config"
	"codeberg.org/mutker/energymon/internal/dashboard"
	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/offline"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load(os.Args[1:])
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The console display renders at info level, so the dashboard is always verbose.
	logger.Init(cfg.Debug, true, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx); err != nil {
		logger.Error().Err(err).Msg("dashboard stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("Exiting...")
}

func run(ctx context.Context) error {
	errFactory := errors.New()

	base, err := url.Parse(cfg.Dashboard.BaseURL)
	if err != nil {
		return errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	store, err := openCache(cfg.Dashboard.CacheDB)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close offline cache")
		}
	}()

	router := offline.NewRouter(base, cfg.Dashboard.CacheName, store, http.DefaultTransport)
	if err := router.Install(ctx); err != nil {
		// Without a complete shell the router keeps passing requests through.
		logger.Warn().
			Err(err).
			Str("base_url", base.String()).
			Msg("Offline cache not installed: every manifest resource must be fetchable, " +
				"which needs the server to run with --web-dir and the chart CDN to be reachable; " +
				"requests go straight to the network")
	} else if err := router.Activate(ctx); err != nil {
		logger.Warn().Err(err).Msg("Offline cache not activated")
	} else {
		logger.Info().Str("generation", router.Generation()).Msg("Offline cache ready")
	}

	client := &http.Client{
		Transport: router,
		Timeout:   cfg.Dashboard.RequestTimeout,
	}
	db := dashboard.New(base, dashboard.WithClient(client))

	go readCommands(ctx, os.Stdin, db)

	return db.Run(ctx)
}

func openCache(path string) (offline.Store, error) {
	if path == "" {
		return offline.NewMemoryStore(), nil
	}

	store, err := offline.NewSQLiteStore(path, logger.Default())
	if err != nil {
		return nil, err
	}
	return store, nil
}

// readCommands turns each stdin line into a control command. Lines holding a
// JSON value are sent as is; anything else is wrapped as {"command": line}.
func readCommands(ctx context.Context, r io.Reader, db *dashboard.Dashboard) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var cmd any
		if err := json.Unmarshal([]byte(line), &cmd); err != nil {
			cmd = map[string]string{"command": line}
		}

		if err := db.SendControl(ctx, cmd); err != nil {
			logger.Debug().Err(err).Msg("Control command failed")
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
