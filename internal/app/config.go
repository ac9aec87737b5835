package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/raysh454/proxyview/internal/address"
	"github.com/raysh454/proxyview/internal/browser"
	"github.com/raysh454/proxyview/internal/relay"
	"github.com/raysh454/proxyview/internal/server"
	"github.com/raysh454/proxyview/internal/webclient"
)

// EnvPrefix namespaces every environment override, e.g. PROXYVIEW_TIMEOUT.
const EnvPrefix = "PROXYVIEW"

// Config aggregates the per-package configs the commands wire together.
type Config struct {
	Address address.Config
	Relay   relay.Config
	Server  server.Config
	Browser browser.Config

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is console or json.
	LogFormat string
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:   address.DefaultConfig(),
		Relay:     relay.DefaultConfig(),
		Server:    server.DefaultConfig(),
		Browser:   browser.DefaultConfig(),
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// envSettings is the flat view of Config that can be set from the
// environment. Unset variables leave the current value alone.
type envSettings struct {
	VerifySecureTransport bool          `envconfig:"VERIFY_SECURE_TRANSPORT"`
	Timeout               time.Duration `envconfig:"TIMEOUT"`
	Backend               string        `envconfig:"BACKEND"`
	DefaultTarget         string        `envconfig:"DEFAULT_TARGET"`
	ListenAddr            string        `envconfig:"LISTEN_ADDR"`
	Headless              bool          `envconfig:"HEADLESS"`
	ChromePath            string        `envconfig:"CHROME_PATH"`
	LogLevel              string        `envconfig:"LOG_LEVEL"`
	LogFormat             string        `envconfig:"LOG_FORMAT"`
}

// LoadEnv applies PROXYVIEW_* environment overrides to cfg.
func LoadEnv(cfg *Config) error {
	env := envSettings{
		VerifySecureTransport: cfg.Relay.VerifySecureTransport,
		Timeout:               cfg.Relay.Timeout,
		Backend:               string(cfg.Relay.Backend),
		DefaultTarget:         cfg.Address.DefaultTarget,
		ListenAddr:            cfg.Server.ListenAddr,
		Headless:              cfg.Browser.Headless,
		ChromePath:            cfg.Browser.ExecPath,
		LogLevel:              cfg.LogLevel,
		LogFormat:             cfg.LogFormat,
	}
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}

	cfg.Relay.VerifySecureTransport = env.VerifySecureTransport
	cfg.Relay.Timeout = env.Timeout
	cfg.Relay.Backend = webclient.Backend(env.Backend)
	cfg.Address.DefaultTarget = env.DefaultTarget
	cfg.Server.ListenAddr = env.ListenAddr
	cfg.Browser.Headless = env.Headless
	cfg.Browser.ExecPath = env.ChromePath
	cfg.LogLevel = env.LogLevel
	cfg.LogFormat = env.LogFormat
	return nil
}
