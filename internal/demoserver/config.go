package demoserver

// Config holds configuration for the demo origin.
type Config struct {
	// PlainAddr is the http listener address.
	PlainAddr string

	// TLSAddr is the https listener address. It serves a self-signed
	// certificate, which the relay accepts unless verification is enabled.
	TLSAddr string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PlainAddr: "127.0.0.1:9080",
		TLSAddr:   "127.0.0.1:9443",
	}
}
