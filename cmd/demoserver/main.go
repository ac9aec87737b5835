// Command demoserver starts a local origin with an http and an https
// listener for trying the relay's fallback and error pages.
// Usage: go run ./cmd/demoserver [--http addr] [--https addr]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/raysh454/proxyview/internal/demoserver"
	"github.com/raysh454/proxyview/internal/logging"
)

func main() {
	cfg := demoserver.DefaultConfig()
	pflag.StringVar(&cfg.PlainAddr, "http", cfg.PlainAddr, "http listen address")
	pflag.StringVar(&cfg.TLSAddr, "https", cfg.TLSAddr, "https listen address (self-signed)")
	pflag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := demoserver.NewDemoServer(cfg, logging.NewStdoutLogger("demoserver"))
	if err := server.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
