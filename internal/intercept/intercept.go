// Package intercept adapts host-surface interception events to the relay and
// maps the outcome onto the reply contract the surface expects.
package intercept

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/raysh454/proxyview/internal/logging"
	"github.com/raysh454/proxyview/internal/model"
	"github.com/raysh454/proxyview/internal/relay"
)

var (
	ErrUnsupportedScheme = errors.New("intercept: unsupported scheme")
	ErrMissingHost       = errors.New("intercept: missing host")
)

// Fetcher is the part of *relay.Relay the handler needs.
type Fetcher interface {
	Fetch(ctx context.Context, d model.RequestDescriptor) (*model.FetchResult, error)
}

// Event is one request issued by a host surface.
type Event struct {
	ID     string
	URL    string
	Method string
}

// NewEvent stamps a fresh event id.
func NewEvent(rawURL, method string) Event {
	return Event{ID: uuid.NewString(), URL: rawURL, Method: method}
}

// ParseEventURL extracts host and path from a proxy://, http:// or https://
// URL. Query and fragment are not part of a descriptor.
func ParseEventURL(raw string) (model.RequestDescriptor, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return model.RequestDescriptor{}, fmt.Errorf("parse event url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case model.ProxyScheme, "http", "https":
	default:
		return model.RequestDescriptor{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return model.RequestDescriptor{}, ErrMissingHost
	}
	return model.NewRequestDescriptor(u.Host, u.EscapedPath())
}

// Handler is safe for concurrent use; each event is handled independently.
type Handler struct {
	fetcher Fetcher
	logger  logging.Logger
}

func NewHandler(f Fetcher, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{
		fetcher: f,
		logger:  logger.With(logging.Field{Key: "component", Value: "intercept"}),
	}
}

// Handle resolves ev and always returns a reply; faults become error pages.
func (h *Handler) Handle(ctx context.Context, ev Event) model.Reply {
	log := h.logger.With(logging.Field{Key: "event_id", Value: ev.ID})

	if ev.Method != "" && !strings.EqualFold(ev.Method, http.MethodGet) {
		log.Info("rejecting non-GET request",
			logging.Field{Key: "method", Value: ev.Method},
			logging.Field{Key: "url", Value: ev.URL})
		return synthesized(http.StatusMethodNotAllowed)
	}

	d, err := ParseEventURL(ev.URL)
	if err != nil {
		log.Warn("bad interception url",
			logging.Field{Key: "url", Value: ev.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return synthesized(http.StatusBadRequest)
	}

	return h.Resolve(ctx, d, log)
}

// Resolve relays an already parsed descriptor.
func (h *Handler) Resolve(ctx context.Context, d model.RequestDescriptor, log logging.Logger) model.Reply {
	if log == nil {
		log = h.logger
	}

	res, err := h.fetcher.Fetch(ctx, d)
	if err != nil {
		log.Warn("relay failed",
			logging.Field{Key: "target", Value: d.String()},
			logging.Field{Key: "error", Value: err.Error()})
		if res == nil {
			return synthesized(http.StatusBadGateway)
		}
	}

	reply := res.Reply()
	log.Debug("replying",
		logging.Field{Key: "target", Value: d.String()},
		logging.Field{Key: "status", Value: reply.StatusCode},
		logging.Field{Key: "ok", Value: reply.OK})
	return reply
}

func synthesized(status int) model.Reply {
	return model.NewFailure(status, relay.ErrorPage(status), "").Reply()
}
