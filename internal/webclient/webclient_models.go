package webclient

import (
	"net/http"
	"time"
)

// Request is one outbound exchange. The relay only issues bare GETs; the
// other fields exist for Do callers that need them.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// Response is a fully read upstream response. A non-nil Response means the
// exchange succeeded at the protocol level, whatever the status code.
type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

// ContentType returns the upstream Content-Type header, or "" when absent.
func (r *Response) ContentType() string {
	if r == nil {
		return ""
	}
	return r.Headers.Get("Content-Type")
}

// URL is the address the response was fetched from, if known.
func (r *Response) URL() string {
	if r == nil || r.Request == nil {
		return ""
	}
	return r.Request.URL
}
