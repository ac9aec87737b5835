// Package browser drives Chrome as the rendering surface. Every request the
// page makes is paused with the CDP Fetch domain and fulfilled from the relay,
// so Chrome itself never touches the network.
//
// Interception is installed on the single page target. Site isolation is
// turned off so cross-site iframes stay in that target, and new windows
// (popups, window.open) are blocked since they would open targets the
// interceptor is not attached to.
package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/proxyview/internal/address"
	"github.com/raysh454/proxyview/internal/intercept"
	"github.com/raysh454/proxyview/internal/logging"
	"github.com/raysh454/proxyview/internal/model"
)

var ErrNotOpen = errors.New("browser: not open")

type Browser struct {
	cfg        Config
	handler    *intercept.Handler
	normalizer *address.Normalizer
	logger     logging.Logger

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	// inflightMu orders inflight.Add against the Wait in Close.
	inflightMu sync.Mutex
	closing    bool
	inflight   sync.WaitGroup
}

func New(cfg Config, h *intercept.Handler, n *address.Normalizer, logger logging.Logger) *Browser {
	if logger == nil {
		logger = logging.Nop()
	}
	if n == nil {
		n = address.NewNormalizer(address.DefaultConfig())
	}
	return &Browser{
		cfg:        cfg,
		handler:    h,
		normalizer: n,
		logger:     logger.With(logging.Field{Key: "component", Value: "browser"}),
	}
}

// Open starts Chrome and installs the request interceptor.
func (b *Browser) Open(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx != nil {
		return nil
	}
	b.inflightMu.Lock()
	b.closing = false
	b.inflightMu.Unlock()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(b.cfg.WindowWidth, b.cfg.WindowHeight),
	)
	for name, value := range chromeFlags(b.cfg) {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if b.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.cfg.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	chromeCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(b.cdpLog),
		chromedp.WithErrorf(b.cdpLog),
	)

	chromedp.ListenTarget(chromeCtx, func(ev any) {
		if ev, ok := ev.(*fetch.EventRequestPaused); ok && b.track() {
			go b.fulfil(chromeCtx, ev)
		}
	})

	err := chromedp.Run(chromeCtx, fetch.Enable().WithPatterns([]*fetch.RequestPattern{
		{URLPattern: "*", RequestStage: fetch.RequestStageRequest},
	}))
	if err != nil {
		cancel()
		allocCancel()
		return fmt.Errorf("start chrome: %w", err)
	}

	b.ctx, b.cancel, b.allocCancel = chromeCtx, cancel, allocCancel
	b.logger.Info("browser opened", logging.Field{Key: "headless", Value: b.cfg.Headless})
	return nil
}

// Navigate normalizes input, loads it and returns the text for the address bar.
func (b *Browser) Navigate(input string) (string, error) {
	norm := b.normalizer.Normalize(input)
	if err := b.run(chromedp.Navigate(NavigationURL(norm.Descriptor))); err != nil {
		return norm.Display, fmt.Errorf("navigate %s: %w", norm.Descriptor, err)
	}
	return norm.Display, nil
}

func (b *Browser) Back() error    { return b.run(chromedp.NavigateBack()) }
func (b *Browser) Forward() error { return b.run(chromedp.NavigateForward()) }
func (b *Browser) Reload() error  { return b.run(chromedp.Reload()) }

// Title returns the title of the current document.
func (b *Browser) Title() (string, error) {
	var title string
	err := b.run(chromedp.Title(&title))
	return title, err
}

// Location returns the URL Chrome shows for the current document.
func (b *Browser) Location() (string, error) {
	var loc string
	err := b.run(chromedp.Location(&loc))
	return loc, err
}

// Done is closed when the Chrome window goes away.
func (b *Browser) Done() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return b.ctx.Done()
}

// Close shuts Chrome down and waits for pending replies.
func (b *Browser) Close() error {
	b.mu.Lock()
	cancel, allocCancel := b.cancel, b.allocCancel
	b.ctx, b.cancel, b.allocCancel = nil, nil, nil
	b.mu.Unlock()

	if cancel == nil {
		return nil
	}
	b.inflightMu.Lock()
	b.closing = true
	b.inflightMu.Unlock()

	cancel()
	b.inflight.Wait()
	allocCancel()
	b.logger.Info("browser closed")
	return nil
}

func (b *Browser) run(actions ...chromedp.Action) error {
	b.mu.Lock()
	ctx := b.ctx
	b.mu.Unlock()
	if ctx == nil {
		return ErrNotOpen
	}
	return chromedp.Run(ctx, actions...)
}

// chromeFlags are set on top of the defaults. Site isolation off and new
// windows blocked keep every request on the intercepted page target.
func chromeFlags(cfg Config) map[string]any {
	return map[string]any{
		"headless":               cfg.Headless,
		"disable-features":       "site-per-process,Translate,BlinkGenPropertyTrees",
		"block-new-web-contents": true,
	}
}

// track registers one pending reply, or reports false once Close has begun.
func (b *Browser) track() bool {
	b.inflightMu.Lock()
	defer b.inflightMu.Unlock()
	if b.closing {
		return false
	}
	b.inflight.Add(1)
	return true
}

func (b *Browser) fulfil(ctx context.Context, ev *fetch.EventRequestPaused) {
	defer b.inflight.Done()

	event := intercept.NewEvent(ev.Request.URL, ev.Request.Method)
	reply := b.handler.Handle(ctx, event)

	c := chromedp.FromContext(ctx)
	if c == nil || c.Target == nil {
		return
	}
	execCtx := cdp.WithExecutor(ctx, c.Target)
	if err := FulfilParams(ev.RequestID, reply).Do(execCtx); err != nil && ctx.Err() == nil {
		b.logger.Warn("fulfil request",
			logging.Field{Key: "event_id", Value: event.ID},
			logging.Field{Key: "url", Value: ev.Request.URL},
			logging.Field{Key: "error", Value: err.Error()})
	}
}

func (b *Browser) cdpLog(format string, args ...any) {
	b.logger.Debug(fmt.Sprintf(format, args...))
}

// NavigationURL is the URL Chrome is pointed at for d. Chrome cannot issue
// requests for an unregistered scheme, so pages load under https and every
// request is resolved by the relay regardless.
func NavigationURL(d model.RequestDescriptor) string {
	return "https://" + d.Host() + d.Path()
}

// FulfilParams maps a reply onto a Fetch.fulfillRequest command.
func FulfilParams(id fetch.RequestID, reply model.Reply) *fetch.FulfillRequestParams {
	status := reply.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	headers := []*fetch.HeaderEntry{
		{Name: "Content-Type", Value: reply.ContentType},
		{Name: "Content-Length", Value: strconv.Itoa(len(reply.Body))},
	}
	return fetch.FulfillRequest(id, int64(status)).
		WithResponseHeaders(headers).
		WithBody(base64.StdEncoding.EncodeToString(reply.Body))
}
