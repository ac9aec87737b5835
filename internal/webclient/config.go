package webclient

import "time"

type Backend string

const (
	BackendNetHTTP Backend = "nethttp"
	BackendResty   Backend = "resty"
)

// Config describes one outbound client.
type Config struct {
	Backend Backend

	// Timeout bounds a whole exchange, body included. Zero means no limit.
	Timeout time.Duration

	// VerifyTLS enables certificate verification. When false any
	// certificate is accepted.
	VerifyTLS bool

	// MaxIdleConns sizes the shared connection pool.
	MaxIdleConns int
}

// DefaultConfig returns a verifying nethttp client config.
func DefaultConfig() Config {
	return Config{
		Backend:      BackendNetHTTP,
		Timeout:      30 * time.Second,
		VerifyTLS:    true,
		MaxIdleConns: 32,
	}
}
