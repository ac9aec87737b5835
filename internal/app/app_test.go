package app_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/raysh454/proxyview/internal/app"
	"github.com/raysh454/proxyview/internal/relay"
	"github.com/raysh454/proxyview/internal/testutil"
	"github.com/raysh454/proxyview/internal/webclient"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := app.DefaultConfig()
	if cfg.Relay.VerifySecureTransport {
		t.Error("secure transport verification should default to off")
	}
	if cfg.Address.DefaultTarget != "https://www.example.com" {
		t.Errorf("unexpected default target %q", cfg.Address.DefaultTarget)
	}
	if cfg.Relay.Backend != webclient.BackendNetHTTP {
		t.Errorf("unexpected backend %q", cfg.Relay.Backend)
	}
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("PROXYVIEW_VERIFY_SECURE_TRANSPORT", "true")
	t.Setenv("PROXYVIEW_TIMEOUT", "5s")
	t.Setenv("PROXYVIEW_BACKEND", "resty")
	t.Setenv("PROXYVIEW_LISTEN_ADDR", "127.0.0.1:9090")
	t.Setenv("PROXYVIEW_DEFAULT_TARGET", "example.org")

	cfg := app.DefaultConfig()
	if err := app.LoadEnv(cfg); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if !cfg.Relay.VerifySecureTransport {
		t.Error("verify flag not applied")
	}
	if cfg.Relay.Timeout != 5*time.Second {
		t.Errorf("unexpected timeout %v", cfg.Relay.Timeout)
	}
	if cfg.Relay.Backend != webclient.BackendResty {
		t.Errorf("unexpected backend %q", cfg.Relay.Backend)
	}
	if cfg.Server.ListenAddr != "127.0.0.1:9090" {
		t.Errorf("unexpected listen addr %q", cfg.Server.ListenAddr)
	}
	if cfg.Address.DefaultTarget != "example.org" {
		t.Errorf("unexpected default target %q", cfg.Address.DefaultTarget)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("unset variable changed log level to %q", cfg.LogLevel)
	}
}

func TestLoadEnv_RejectsBadDuration(t *testing.T) {
	t.Setenv("PROXYVIEW_TIMEOUT", "soon")
	if err := app.LoadEnv(app.DefaultConfig()); err == nil {
		t.Error("expected parse error")
	}
}

func TestNew_RejectsUnknownBackend(t *testing.T) {
	t.Parallel()
	cfg := app.DefaultConfig()
	cfg.Relay.Backend = "carrier-pigeon"
	if _, err := app.New(cfg, nil); err == nil {
		t.Error("expected unknown backend error")
	}
}

func TestApplication_FetchUsesNormalizer(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	r, err := relay.New(relay.DefaultConfig(), wc, wc, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	a := app.NewWithRelay(app.DefaultConfig(), &testutil.DummyLogger{}, nil, r)
	defer a.Close()

	norm, res, err := a.Fetch(context.Background(), "  ")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if norm.Display != "https://www.example.com" {
		t.Errorf("unexpected display %q", norm.Display)
	}
	if !res.Success() || string(res.Body) != "ok:https://www.example.com/" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestApplication_ServerServesRelayAndMetrics(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{FailSchemes: map[string]bool{"https": true}}
	reg := prometheus.NewRegistry()
	r, err := relay.New(relay.DefaultConfig(), wc, wc, nil, relay.NewMetrics(reg))
	if err != nil {
		t.Fatal(err)
	}
	a := app.NewWithRelay(app.DefaultConfig(), nil, reg, r)

	srv, err := a.Server()
	if err != nil {
		t.Fatalf("Server: %v", err)
	}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/proxy/example.com/hello")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("unexpected status %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "proxyview_relay_downgrades_total 1") {
		t.Errorf("downgrade not counted:\n%s", body)
	}
}
