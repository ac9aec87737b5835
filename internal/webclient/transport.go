package webclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// NewHTTPClient builds the *http.Client shared by the backends.
func NewHTTPClient(cfg Config) *http.Client {
	dialTimeout := cfg.Timeout
	if dialTimeout <= 0 {
		dialTimeout = 30 * time.Second
	}
	idle := cfg.MaxIdleConns
	if idle <= 0 {
		idle = DefaultConfig().MaxIdleConns
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS, //nolint:gosec // opt-in trust-everything secure attempt
		},
		DialContext: (&net.Dialer{
			Timeout: dialTimeout,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        idle,
		MaxIdleConnsPerHost: idle,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}
