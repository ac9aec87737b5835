// Package server exposes the relay as a local HTTP gateway: /proxy/{host}/...
// is the HTTP rendition of the proxy:// scheme.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raysh454/proxyview/internal/address"
	"github.com/raysh454/proxyview/internal/intercept"
	"github.com/raysh454/proxyview/internal/logging"
	"github.com/raysh454/proxyview/internal/model"
	"github.com/raysh454/proxyview/internal/session"
)

const proxyPrefix = "/proxy/"

// Deps are the collaborators the gateway serves.
type Deps struct {
	Handler    *intercept.Handler
	Normalizer *address.Normalizer
	Logger     logging.Logger
	// Gatherer backs /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
}

// Server is the HTTP + WebSocket surface.
type Server struct {
	cfg        Config
	router     chi.Router
	upgrader   websocket.Upgrader
	handler    *intercept.Handler
	normalizer *address.Normalizer
	gatherer   prometheus.Gatherer
	logger     logging.Logger
}

func NewServer(cfg Config, deps Deps) (*Server, error) {
	if deps.Handler == nil {
		return nil, errors.New("server: intercept handler is required")
	}
	if deps.Normalizer == nil {
		deps.Normalizer = address.NewNormalizer(address.DefaultConfig())
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	s := &Server{
		cfg:        cfg,
		router:     chi.NewRouter(),
		handler:    deps.Handler,
		normalizer: deps.Normalizer,
		gatherer:   deps.Gatherer,
		logger:     logger.With(logging.Field{Key: "component", Value: "server"}),
		upgrader: websocket.Upgrader{
			CheckOrigin: sameHostOrigin,
		},
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/navigate", s.handleNavigate)
	r.HandleFunc("/proxy/*", s.handleProxy)
	r.Get("/ws/browse", s.handleBrowseWS)

	r.NotFound(s.handleStray)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}
	if q := r.URL.RawQuery; q != "" {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}
	s.logger.Debug("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
	}
}

// GatewayPath returns the gateway path serving d.
func GatewayPath(d model.RequestDescriptor) string {
	return proxyPrefix + d.Host() + d.Path()
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeReply(w http.ResponseWriter, reply model.Reply) {
	status := reply.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", reply.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(reply.Body)))
	w.WriteHeader(status)
	_, _ = w.Write(reply.Body)
}

// --- HTTP handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	norm := s.normalizer.Normalize(r.URL.Query().Get("q"))
	s.logger.Info("navigate",
		logging.Field{Key: "display", Value: norm.Display},
		logging.Field{Key: "target", Value: norm.Descriptor.String()})
	http.Redirect(w, r, GatewayPath(norm.Descriptor), http.StatusFound)
}

func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.EscapedPath(), proxyPrefix)
	host, path, _ := strings.Cut(rest, "/")
	if host == "" {
		writeReply(w, s.handler.Handle(r.Context(), intercept.NewEvent("proxy:///", r.Method)))
		return
	}

	ev := intercept.NewEvent(model.ProxyScheme+"://"+host+"/"+path, r.Method)
	w.Header().Set("X-Proxyview-Event", ev.ID)
	writeReply(w, s.handler.Handle(r.Context(), ev))
}

// handleStray redirects root-relative sub-resources of a proxied page back
// under the page's /proxy/{host} prefix, using the Referer.
func (s *Server) handleStray(w http.ResponseWriter, r *http.Request) {
	ref, err := url.Parse(r.Referer())
	if err != nil || !strings.HasPrefix(ref.EscapedPath(), proxyPrefix) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	host, _, _ := strings.Cut(strings.TrimPrefix(ref.EscapedPath(), proxyPrefix), "/")
	if host == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	target := proxyPrefix + host + r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// --- WebSocket ---

func (s *Server) handleBrowseWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	ctx := r.Context()
	sess := session.New(s.normalizer, s.handler, s.logger)

	for {
		var cmd BrowseCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("browse socket closed", logging.Field{Key: "error", Value: err.Error()})
			}
			return
		}

		page, err := s.runCommand(ctx, sess, cmd)
		if err != nil {
			if werr := conn.WriteJSON(ErrorResponse{Error: err.Error()}); werr != nil {
				return
			}
			continue
		}

		frame := PageFrame{
			Action:      cmd.Action,
			Display:     page.Display,
			Target:      page.Descriptor.String(),
			Gateway:     GatewayPath(page.Descriptor),
			Title:       page.Title,
			StatusCode:  page.Reply.StatusCode,
			OK:          page.Reply.OK,
			ContentType: page.Reply.ContentType,
			Body:        page.Reply.Body,
		}
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
	}
}

var errUnknownAction = errors.New("unknown action")

func (s *Server) runCommand(ctx context.Context, sess *session.Session, cmd BrowseCommand) (*session.Page, error) {
	switch strings.ToLower(cmd.Action) {
	case "navigate", "":
		return sess.Navigate(ctx, cmd.Input), nil
	case "back":
		return sess.Back(ctx)
	case "forward":
		return sess.Forward(ctx)
	case "reload":
		return sess.Reload(ctx)
	default:
		return nil, errUnknownAction
	}
}

// sameHostOrigin accepts non-browser clients and same-host browser pages.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
