package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/raysh454/proxyview/internal/logging"
)

// RestyClient is the resty-backed WebClient. Retries stay disabled; the relay
// owns the only fallback.
type RestyClient struct {
	client *resty.Client
	logger logging.Logger
}

// NewRestyClient builds a resty client on top of httpClient, or a client
// built from cfg when nil.
func NewRestyClient(cfg Config, logger logging.Logger, httpClient *http.Client) (WebClient, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg)
	}

	rc := resty.NewWithClient(httpClient).
		SetRetryCount(0).
		SetTimeout(httpClient.Timeout)

	componentLogger := logger.With(logging.Field{Key: "backend", Value: string(BackendResty)})
	componentLogger.Debug("created resty webclient",
		logging.Field{Key: "timeout", Value: httpClient.Timeout.String()},
		logging.Field{Key: "verify_tls", Value: cfg.VerifyTLS})

	return &RestyClient{client: rc, logger: componentLogger}, nil
}

func (r *RestyClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	rr := r.client.R().SetContext(ctx)
	for k, vs := range req.Headers {
		rr.SetHeaderMultiValues(map[string][]string{k: vs})
	}
	if len(req.Body) > 0 {
		rr.SetBody(req.Body)
	}

	r.logger.Debug("sending http request",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: req.URL})

	resp, err := rr.Execute(method, req.URL)
	if err != nil {
		r.logger.Debug("http request failed",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("resty execute: %w", err)
	}

	return &Response{
		Request:    req,
		Body:       resp.Body(),
		Headers:    resp.Header(),
		StatusCode: resp.StatusCode(),
		FetchedAt:  time.Now(),
	}, nil
}

func (r *RestyClient) Get(ctx context.Context, url string) (*Response, error) {
	return r.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

func (r *RestyClient) Close() error {
	r.client.GetClient().CloseIdleConnections()
	return nil
}
