package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/proxyview/internal/app"
	"github.com/raysh454/proxyview/internal/cli"
	"github.com/raysh454/proxyview/internal/logging"
)

func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --timeout %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid --timeout %q: must not be negative", s)
	}
	return d, nil
}

func newBrowseCmd(rt *state) *cobra.Command {
	c := &cobra.Command{
		Use:   "browse [url]",
		Short: "Open a Chrome window whose requests all go through the relay",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			interactive := cli.IsInteractive(os.Stdin)
			in := bufio.NewReader(cmd.InOrStdin())
			target, err := cli.ResolveTarget(args, in, cmd.ErrOrStderr(), interactive)
			if err != nil {
				return err
			}

			a, err := app.New(rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			b := a.Browser()
			if err := b.Open(ctx); err != nil {
				return err
			}
			defer b.Close()

			display, err := b.Navigate(target)
			if err != nil {
				return err
			}
			rt.logger.Info("opened", logging.Field{Key: "address", Value: display})

			toolbarDone := make(chan error, 1)
			if interactive {
				go func() { toolbarDone <- cli.RunToolbar(ctx, in, cmd.ErrOrStderr(), b) }()
			}

			select {
			case <-ctx.Done():
			case <-b.Done():
			case err := <-toolbarDone:
				return err
			}
			return nil
		},
	}
	c.Flags().Bool("headless", false, "Run Chrome without a window (env PROXYVIEW_HEADLESS)")
	c.Flags().String("chrome-path", "", "Chrome executable (env PROXYVIEW_CHROME_PATH)")
	return c
}

func newServeCmd(rt *state) *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the relay as an HTTP gateway under /proxy/{host}/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			srv, err := a.Server()
			if err != nil {
				return err
			}
			httpSrv := srv.HTTPServer()

			errCh := make(chan error, 1)
			go func() {
				rt.logger.Info("gateway listening", logging.Field{Key: "addr", Value: httpSrv.Addr})
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		},
	}
	c.Flags().String("listen", "", "Gateway listen address (env PROXYVIEW_LISTEN_ADDR, default 127.0.0.1:8080)")
	return c
}

func newFetchCmd(rt *state) *cobra.Command {
	var showStatus bool
	c := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch one address through the relay and write the body to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			norm, res, fetchErr := a.Fetch(cmd.Context(), args[0])
			if res == nil {
				return fetchErr
			}
			if showStatus {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %d %s\n", norm.Display, res.StatusCode, res.ContentType)
			}
			if _, err := cmd.OutOrStdout().Write(res.Body); err != nil {
				return err
			}
			return fetchErr
		},
	}
	c.Flags().BoolVarP(&showStatus, "status", "s", false, "Print address, status and content type to stderr")
	return c
}
