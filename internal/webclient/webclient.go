package webclient

import "context"

// WebClient performs one outbound HTTP exchange. Implementations must be
// safe for concurrent use; the relay shares one client across requests.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}
