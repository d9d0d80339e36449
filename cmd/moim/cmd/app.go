package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/moimlabs/moim-go/internal/adapter/outbound/keystore"
	"github.com/moimlabs/moim-go/internal/adapter/outbound/providersdk"
	"github.com/moimlabs/moim-go/internal/config"
	"github.com/moimlabs/moim-go/internal/domain/provider"
	"github.com/moimlabs/moim-go/internal/service"
	"github.com/moimlabs/moim-go/internal/transport"
)

// app holds the explicitly wired dependency graph: config, store,
// pipeline, gateway. Constructed once per command invocation and passed
// down; no ambient globals.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *keystore.Store
	gateway *service.SessionGateway
	closers []func() error
}

// providerToken reads the pre-obtained provider tokens from flags/env.
type providerToken struct {
	accessToken string
	idToken     string
}

// newApp loads config and wires the dependency graph.
func newApp(tokens map[provider.Provider]providerToken) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.SecretsPath), 0700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.PrefsPath), 0700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	prefs, err := keystore.OpenPrefs(cfg.Storage.PrefsPath)
	if err != nil {
		return nil, err
	}
	store := keystore.New(cfg.Storage.SecretsPath, prefs, logger)

	pipeline := transport.NewPipeline(cfg.Server.BaseURL, store,
		transport.WithTimeout(cfg.RequestTimeout()),
		transport.WithMetrics(transport.NewMetrics(prometheus.NewRegistry())),
		transport.WithLogger(logger),
	)

	authenticators := make(map[provider.Provider]provider.Authenticator)
	for p, t := range tokens {
		authenticators[p] = providersdk.NewTokenAuthenticator(p, t.accessToken, t.idToken, logger)
	}

	gateway := service.NewSessionGateway(pipeline, store, authenticators, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		gateway: gateway,
		closers: []func() error{prefs.Close},
	}, nil
}

// close releases the app's resources.
func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// termAnchor is the terminal's presentation anchor: there is no native
// picker to present, but the anchor still marks that a user-facing
// surface exists.
type termAnchor struct{}

// Description identifies the anchor for logging.
func (termAnchor) Description() string { return "terminal" }
