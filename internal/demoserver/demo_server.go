// Package demoserver is a small local origin for exercising the relay: one
// page that links to the interesting cases, arbitrary status codes and a
// response without a Content-Type.
package demoserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/proxyview/internal/logging"
)

const indexPage = `<html>
<head><title>proxyview demo</title></head>
<body>
<h1>proxyview demo origin</h1>
<ul>
<li><a href="/status/404">missing page</a></li>
<li><a href="/status/500">server error</a></li>
<li><a href="/bare">no content type</a></li>
<li><a href="/slow/2s">slow response</a></li>
</ul>
<img src="/pixel.gif" alt="">
</body>
</html>`

// 1x1 transparent GIF.
var pixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// DemoServer serves the same routes over http and https.
type DemoServer struct {
	cfg    Config
	logger logging.Logger
	router chi.Router

	plain  *httptest.Server
	secure *httptest.Server
}

func NewDemoServer(cfg Config, logger logging.Logger) *DemoServer {
	if logger == nil {
		logger = logging.NewStdoutLogger("demoserver")
	}
	s := &DemoServer{cfg: cfg, logger: logger, router: chi.NewRouter()}
	s.router.Get("/", s.handleIndex)
	s.router.Get("/status/{code}", s.handleStatus)
	s.router.Get("/bare", s.handleBare)
	s.router.Get("/slow/{duration}", s.handleSlow)
	s.router.Get("/pixel.gif", s.handlePixel)
	return s
}

// Handler exposes the routes without listeners, for tests.
func (s *DemoServer) Handler() http.Handler { return s }

func (s *DemoServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("demo request",
		logging.Field{Key: "method", Value: r.Method},
		logging.Field{Key: "path", Value: r.URL.Path},
		logging.Field{Key: "tls", Value: r.TLS != nil})
	s.router.ServeHTTP(w, r)
}

// Start opens both listeners. Addresses may use port 0.
func (s *DemoServer) Start() error {
	plainLn, err := net.Listen("tcp", s.cfg.PlainAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.PlainAddr, err)
	}
	tlsLn, err := net.Listen("tcp", s.cfg.TLSAddr)
	if err != nil {
		_ = plainLn.Close()
		return fmt.Errorf("listen %s: %w", s.cfg.TLSAddr, err)
	}

	s.plain = httptest.NewUnstartedServer(s)
	s.plain.Listener = plainLn
	s.plain.Start()

	s.secure = httptest.NewUnstartedServer(s)
	s.secure.Listener = tlsLn
	s.secure.StartTLS()

	s.logger.Info("demo server started",
		logging.Field{Key: "http", Value: s.plain.URL},
		logging.Field{Key: "https", Value: s.secure.URL})
	return nil
}

// Run starts the listeners and blocks until ctx is done.
func (s *DemoServer) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Close()
	return nil
}

// PlainURL and TLSURL are valid after Start.
func (s *DemoServer) PlainURL() string { return s.plain.URL }
func (s *DemoServer) TLSURL() string   { return s.secure.URL }

func (s *DemoServer) Close() {
	if s.plain != nil {
		s.plain.Close()
	}
	if s.secure != nil {
		s.secure.Close()
	}
}

func (s *DemoServer) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

func (s *DemoServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil || code < 100 || code > 999 {
		http.Error(w, "invalid status code", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, "status %d from the demo origin\n", code)
}

// handleBare suppresses net/http's content sniffing so no Content-Type is sent.
func (s *DemoServer) handleBare(w http.ResponseWriter, _ *http.Request) {
	w.Header()["Content-Type"] = nil
	_, _ = w.Write([]byte("<p>served without a content type</p>"))
}

func (s *DemoServer) handleSlow(w http.ResponseWriter, r *http.Request) {
	d, err := time.ParseDuration(chi.URLParam(r, "duration"))
	if err != nil {
		http.Error(w, "invalid duration", http.StatusBadRequest)
		return
	}
	select {
	case <-time.After(d):
	case <-r.Context().Done():
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "slept %s\n", d)
}

func (s *DemoServer) handlePixel(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/gif")
	_, _ = w.Write(pixel)
}
