package address

// Config controls how free-form address bar text is turned into a request.
type Config struct {
	// DefaultTarget replaces empty input.
	DefaultTarget string

	// AssumedScheme is prepended for parsing when the input has no scheme.
	// It is discarded afterwards; the relay decides the transport order.
	AssumedScheme string
}

// DefaultConfig returns the configuration used by the package-level Normalize.
func DefaultConfig() Config {
	return Config{
		DefaultTarget: "https://www.example.com",
		AssumedScheme: "https",
	}
}
