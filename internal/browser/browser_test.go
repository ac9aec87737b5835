package browser_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"
	"time"

	"github.com/chromedp/cdproto/fetch"

	"github.com/raysh454/proxyview/internal/address"
	"github.com/raysh454/proxyview/internal/browser"
	"github.com/raysh454/proxyview/internal/intercept"
	"github.com/raysh454/proxyview/internal/model"
	"github.com/raysh454/proxyview/internal/relay"
	"github.com/raysh454/proxyview/internal/testutil"
	"github.com/raysh454/proxyview/internal/webclient"
)

func TestNavigationURL(t *testing.T) {
	t.Parallel()
	d, _ := model.NewRequestDescriptor("example.com", "/a")
	if got := browser.NavigationURL(d); got != "https://example.com/a" {
		t.Errorf("unexpected navigation url %q", got)
	}
}

func TestFulfilParams(t *testing.T) {
	t.Parallel()
	reply := model.Reply{ContentType: "image/png", Body: []byte{0x89, 'P', 'N', 'G'}, StatusCode: 200, OK: true}

	p := browser.FulfilParams(fetch.RequestID("interception-1"), reply)
	if p.RequestID != "interception-1" || p.ResponseCode != 200 {
		t.Errorf("unexpected params %+v", p)
	}
	body, err := base64.StdEncoding.DecodeString(p.Body)
	if err != nil || string(body) != string(reply.Body) {
		t.Errorf("body not base64 of reply: %q (%v)", p.Body, err)
	}
	found := false
	for _, h := range p.ResponseHeaders {
		if h.Name == "Content-Type" && h.Value == "image/png" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing content type header: %+v", p.ResponseHeaders)
	}
}

func TestFulfilParams_ZeroStatusBecomes200(t *testing.T) {
	t.Parallel()
	p := browser.FulfilParams("id", model.Reply{ContentType: "text/html"})
	if p.ResponseCode != 200 {
		t.Errorf("expected 200, got %d", p.ResponseCode)
	}
}

func TestBrowser_NotOpen(t *testing.T) {
	t.Parallel()
	b := browser.New(browser.DefaultConfig(), nil, nil, nil)
	if _, err := b.Title(); err != browser.ErrNotOpen {
		t.Errorf("expected ErrNotOpen, got %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close on unopened browser: %v", err)
	}
}

// TestBrowser_RendersRelayedPage drives a real headless Chrome.
// Note: This test is skipped in environments where Chrome cannot start.
func TestBrowser_RendersRelayedPage(t *testing.T) {
	wc := &testutil.DummyWebClient{
		FailSchemes: map[string]bool{"https": true},
		Responses: map[string]*webclient.Response{
			"http://relay.test/": {
				StatusCode: 200,
				Headers:    http.Header{"Content-Type": {"text/html"}},
				Body:       []byte("<html><head><title>Relayed</title></head><body>hi</body></html>"),
			},
			"http://relay.test/two": {
				StatusCode: 200,
				Headers:    http.Header{"Content-Type": {"text/html"}},
				Body:       []byte("<html><head><title>Second</title></head><body>two</body></html>"),
			},
		},
	}
	r, err := relay.New(relay.DefaultConfig(), wc, wc, nil, nil)
	if err != nil {
		t.Fatalf("relay.New: %v", err)
	}

	cfg := browser.DefaultConfig()
	cfg.Headless = true
	b := browser.New(cfg, intercept.NewHandler(r, nil), address.NewNormalizer(address.DefaultConfig()), &testutil.DummyLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := b.Open(ctx); err != nil {
		t.Skipf("Skipping chromedp test (environment does not support chromedp): %v", err)
	}
	defer b.Close()

	display, err := b.Navigate("relay.test")
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if display != "https://relay.test" {
		t.Errorf("unexpected display %q", display)
	}

	title, err := b.Title()
	if err != nil {
		t.Fatalf("Title: %v", err)
	}
	if title != "Relayed" {
		t.Errorf("expected title 'Relayed', got %q", title)
	}

	if _, err := b.Navigate("relay.test/two"); err != nil {
		t.Fatalf("Navigate second page: %v", err)
	}
	waitForPage(t, b, "Second", "https://relay.test/two")

	if err := b.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	waitForPage(t, b, "Relayed", "https://relay.test/")

	if err := b.Forward(); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	waitForPage(t, b, "Second", "https://relay.test/two")

	before := countRequests(wc, "http://relay.test/two")
	if err := b.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	waitForPage(t, b, "Second", "https://relay.test/two")
	if after := countRequests(wc, "http://relay.test/two"); after <= before {
		t.Errorf("reload did not go through the relay: %d requests before, %d after", before, after)
	}
}

func waitForPage(t *testing.T, b *browser.Browser, wantTitle, wantLocation string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	var title, loc string
	for time.Now().Before(deadline) {
		title, _ = b.Title()
		loc, _ = b.Location()
		if title == wantTitle && loc == wantLocation {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("page = %q at %q, want %q at %q", title, loc, wantTitle, wantLocation)
}

func countRequests(wc *testutil.DummyWebClient, url string) int {
	n := 0
	for _, u := range wc.RequestedURLs() {
		if u == url {
			n++
		}
	}
	return n
}
