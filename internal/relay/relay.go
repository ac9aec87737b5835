// Package relay resolves a RequestDescriptor against the public internet,
// trying https first and downgrading to http on a transport fault.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/raysh454/proxyview/internal/logging"
	"github.com/raysh454/proxyview/internal/model"
	"github.com/raysh454/proxyview/internal/webclient"
)

const (
	transportSecure   = "secure"
	transportInsecure = "insecure"
)

// attemptState walks attemptingSecure -> [attemptingInsecure ->] done.
type attemptState int

const (
	attemptingSecure attemptState = iota
	attemptingInsecure
	done
)

func (s attemptState) String() string {
	switch s {
	case attemptingSecure:
		return "attempting_secure"
	case attemptingInsecure:
		return "attempting_insecure"
	default:
		return "done"
	}
}

// Relay holds no per-request state and is safe for concurrent use.
type Relay struct {
	cfg      Config
	secure   webclient.WebClient
	insecure webclient.WebClient
	logger   logging.Logger
	metrics  *Metrics
}

// New wires a relay from explicit clients. secure serves the https
// candidate and insecure the http candidate; they may be the same client.
func New(cfg Config, secure, insecure webclient.WebClient, logger logging.Logger, metrics *Metrics) (*Relay, error) {
	if secure == nil || insecure == nil {
		return nil, errors.New("relay: both webclients are required")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Relay{
		cfg:      cfg,
		secure:   secure,
		insecure: insecure,
		logger:   logger.With(logging.Field{Key: "component", Value: "relay"}),
		metrics:  metrics,
	}, nil
}

// NewFromConfig builds both clients through the webclient registry. Only the
// secure client honours VerifySecureTransport; the insecure client keeps
// standard verification for any https redirect it follows.
func NewFromConfig(cfg Config, logger logging.Logger, metrics *Metrics) (*Relay, error) {
	base := webclient.DefaultConfig()
	base.Backend = cfg.Backend
	base.Timeout = cfg.Timeout

	secureCfg := base
	secureCfg.VerifyTLS = cfg.VerifySecureTransport
	secure, err := webclient.NewWebClient(secureCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("secure webclient: %w", err)
	}

	insecure, err := webclient.NewWebClient(base, logger)
	if err != nil {
		_ = secure.Close()
		return nil, fmt.Errorf("insecure webclient: %w", err)
	}

	if !cfg.VerifySecureTransport && logger != nil {
		logger.Warn("certificate verification disabled for secure attempts")
	}
	return New(cfg, secure, insecure, logger, metrics)
}

// Fetch resolves d to exactly one FetchResult. A response with status 200 is
// passed through; any other status becomes a synthesized error page. When
// both candidates fault, Fetch returns a synthesized 502 page together with
// a *TransportError so callers can render and report it.
func (r *Relay) Fetch(ctx context.Context, d model.RequestDescriptor) (*model.FetchResult, error) {
	if d.IsZero() {
		return nil, model.ErrEmptyHost
	}

	attempt := model.NewTransportAttempt(d)
	faults := newFaults()

	var (
		state = attemptingSecure
		resp  *webclient.Response
		err   error
	)
	for state != done {
		switch state {
		case attemptingSecure:
			resp, err = r.try(ctx, r.secure, transportSecure, attempt.Secure)
			if err != nil {
				faults = multierror.Append(faults, err)
				r.metrics.downgraded()
				r.logger.Info("secure attempt failed, downgrading",
					logging.Field{Key: "url", Value: attempt.Secure},
					logging.Field{Key: "error", Value: err.Error()})
				state = attemptingInsecure
				continue
			}
			state = done

		case attemptingInsecure:
			resp, err = r.try(ctx, r.insecure, transportInsecure, attempt.Insecure)
			if err != nil {
				faults = multierror.Append(faults, err)
			}
			state = done
		}
	}

	if resp == nil {
		r.metrics.fetched(outcomeTransportError)
		terr := &TransportError{Descriptor: d, Faults: faults}
		r.logger.Warn("all transports failed",
			logging.Field{Key: "target", Value: d.String()},
			logging.Field{Key: "error", Value: terr.Error()})
		return model.NewFailure(http.StatusBadGateway, ErrorPage(http.StatusBadGateway), ""), terr
	}

	result := toResult(resp)
	r.metrics.fetched(outcomeOf(result))
	r.logger.Debug("relayed",
		logging.Field{Key: "url", Value: result.URL},
		logging.Field{Key: "status", Value: result.StatusCode},
		logging.Field{Key: "content_type", Value: result.ContentType},
		logging.Field{Key: "bytes", Value: len(result.Body)})
	return result, nil
}

// Close releases both clients.
func (r *Relay) Close() error {
	var errs *multierror.Error
	if err := r.secure.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if r.insecure != r.secure {
		if err := r.insecure.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (r *Relay) try(ctx context.Context, wc webclient.WebClient, transport, url string) (*webclient.Response, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := wc.Get(ctx, url)
	r.metrics.attempted(transport, time.Since(start))
	if err != nil {
		return nil, &AttemptError{Transport: transport, URL: url, Err: err}
	}
	if resp == nil {
		return nil, &AttemptError{Transport: transport, URL: url, Err: errors.New("no response")}
	}
	return resp, nil
}

func toResult(resp *webclient.Response) *model.FetchResult {
	url := resp.URL()
	if resp.StatusCode != http.StatusOK {
		return model.NewFailure(resp.StatusCode, ErrorPage(resp.StatusCode), url)
	}

	contentType := resp.ContentType()
	if contentType == "" {
		contentType = model.HTMLContentType
	}
	return model.NewSuccess(resp.StatusCode, contentType, resp.Body, url)
}

func outcomeOf(r *model.FetchResult) string {
	if r.Success() {
		return outcomeSuccess
	}
	return outcomeFailure
}
