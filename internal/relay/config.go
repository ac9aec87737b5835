package relay

import (
	"time"

	"github.com/raysh454/proxyview/internal/webclient"
)

type Config struct {
	// VerifySecureTransport enables certificate verification on the https
	// attempt. Off by default: the secure attempt trusts any certificate.
	VerifySecureTransport bool

	// Timeout bounds each attempt separately. Zero disables the bound.
	Timeout time.Duration

	// Backend selects the webclient implementation for both attempts.
	Backend webclient.Backend
}

func DefaultConfig() Config {
	return Config{
		VerifySecureTransport: false,
		Timeout:               30 * time.Second,
		Backend:               webclient.BackendNetHTTP,
	}
}
