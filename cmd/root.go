package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/raysh454/proxyview/internal/app"
	"github.com/raysh454/proxyview/internal/logging"
	"github.com/raysh454/proxyview/internal/webclient"
)

// state is the state shared by the subcommands after flag parsing.
type state struct {
	cfg    *app.Config
	logger logging.Logger
	sync   func() error

	// flag targets, applied over the environment only when set
	verify    bool
	timeout   string
	backend   backendValue
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	return newRoot(&state{})
}

func newRoot(rt *state) *cobra.Command {
	root := &cobra.Command{
		Use:   "proxyview",
		Short: "Browse any site through a relay that tries https first and falls back to http",
		Long: `proxyview renders pages whose every request is fetched by a local relay.
Each request is tried over https first; only a transport fault on that
attempt moves it to http. Non-200 answers are shown as a short error page.`,
		Example: `  proxyview browse example.com
  proxyview serve --listen 127.0.0.1:8080
  proxyview fetch example.com/robots.txt
  proxyview fetch --verify-secure-transport --backend resty example.com`,
		PersistentPreRunE: rt.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt.sync != nil {
				_ = rt.sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.BoolVar(&rt.verify, "verify-secure-transport", false, "Verify certificates on the https attempt (env PROXYVIEW_VERIFY_SECURE_TRANSPORT)")
	f.StringVar(&rt.timeout, "timeout", "", "Per-attempt timeout, e.g. 10s (env PROXYVIEW_TIMEOUT, default 30s)")
	f.Var(&rt.backend, "backend", "HTTP backend: "+strings.Join(webclient.ListBackends(), "|")+" (env PROXYVIEW_BACKEND)")
	f.StringVar(&rt.logLevel, "log-level", "", "Log level: debug|info|warn|error (env PROXYVIEW_LOG_LEVEL)")
	f.StringVar(&rt.logFormat, "log-format", "", "Log format: console|json (env PROXYVIEW_LOG_FORMAT)")

	root.AddCommand(newBrowseCmd(rt), newServeCmd(rt), newFetchCmd(rt))
	return root
}

// setup layers defaults, environment and explicitly set flags.
func (rt *state) setup(cmd *cobra.Command, _ []string) error {
	cfg := app.DefaultConfig()
	if err := app.LoadEnv(cfg); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("verify-secure-transport") {
		cfg.Relay.VerifySecureTransport = rt.verify
	}
	if flags.Changed("timeout") {
		d, err := parseTimeout(rt.timeout)
		if err != nil {
			return err
		}
		cfg.Relay.Timeout = d
	}
	if flags.Changed("backend") {
		cfg.Relay.Backend = webclient.Backend(rt.backend)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = rt.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = rt.logFormat
	}
	applyLocalFlags(cfg, flags)

	logger, err := logging.NewZapLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.logger = logger
	rt.sync = logger.Sync
	return nil
}

// applyLocalFlags copies subcommand flags that override configuration.
func applyLocalFlags(cfg *app.Config, flags *pflag.FlagSet) {
	if flags.Changed("listen") {
		cfg.Server.ListenAddr, _ = flags.GetString("listen")
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless, _ = flags.GetBool("headless")
	}
	if flags.Changed("chrome-path") {
		cfg.Browser.ExecPath, _ = flags.GetString("chrome-path")
	}
}

// Execute runs the root command.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// backendValue implements pflag.Value, rejecting unregistered backends at
// parse time.
type backendValue string

func (v *backendValue) String() string { return string(*v) }

func (v *backendValue) Set(s string) error {
	b, err := webclient.ParseBackend(s)
	if err != nil {
		return err
	}
	*v = backendValue(b)
	return nil
}

func (v *backendValue) Type() string { return "backend" }
