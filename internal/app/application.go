// Package app wires the relay, its host surfaces and their shared
// infrastructure from a single Config.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/raysh454/proxyview/internal/address"
	"github.com/raysh454/proxyview/internal/browser"
	"github.com/raysh454/proxyview/internal/intercept"
	"github.com/raysh454/proxyview/internal/logging"
	"github.com/raysh454/proxyview/internal/model"
	"github.com/raysh454/proxyview/internal/relay"
	"github.com/raysh454/proxyview/internal/server"
)

// Application holds the components shared by every command. Pass it around
// rather than using package-level state.
type Application struct {
	Config *Config
	Logger logging.Logger

	Registry   *prometheus.Registry
	Normalizer *address.Normalizer
	Relay      *relay.Relay
	Handler    *intercept.Handler
}

// New builds the relay from cfg. Host surfaces are created on demand.
func New(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}

	reg := prometheus.NewRegistry()
	r, err := relay.NewFromConfig(cfg.Relay, logger, relay.NewMetrics(reg))
	if err != nil {
		return nil, fmt.Errorf("new relay: %w", err)
	}

	return NewWithRelay(cfg, logger, reg, r), nil
}

// NewWithRelay wires an Application around an existing relay.
func NewWithRelay(cfg *Config, logger logging.Logger, reg *prometheus.Registry, r *relay.Relay) *Application {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Application{
		Config:     cfg,
		Logger:     logger,
		Registry:   reg,
		Normalizer: address.NewNormalizer(cfg.Address),
		Relay:      r,
		Handler:    intercept.NewHandler(r, logger),
	}
}

// Fetch normalizes input and resolves it once.
func (a *Application) Fetch(ctx context.Context, input string) (address.Normalized, *model.FetchResult, error) {
	norm := a.Normalizer.Normalize(input)
	res, err := a.Relay.Fetch(ctx, norm.Descriptor)
	return norm, res, err
}

// Server builds the HTTP gateway.
func (a *Application) Server() (*server.Server, error) {
	deps := server.Deps{
		Handler:    a.Handler,
		Normalizer: a.Normalizer,
		Logger:     a.Logger,
	}
	if a.Registry != nil {
		deps.Gatherer = a.Registry
	}
	return server.NewServer(a.Config.Server, deps)
}

// Browser builds the Chrome surface. The caller opens and closes it.
func (a *Application) Browser() *browser.Browser {
	return browser.New(a.Config.Browser, a.Handler, a.Normalizer, a.Logger)
}

// Close releases the relay's connection pools.
func (a *Application) Close() error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown")
	return a.Relay.Close()
}
