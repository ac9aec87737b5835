package model

import (
	"errors"
	"strings"
)

// ProxyScheme is the custom scheme under which the host surface issues
// interception events.
const ProxyScheme = "proxy"

// ErrEmptyHost is returned when a RequestDescriptor is built without a host.
var ErrEmptyHost = errors.New("request descriptor: empty host")

// RequestDescriptor identifies one resource to relay. It is created per
// interception event and never reused. The zero value is not valid; use
// NewRequestDescriptor.
type RequestDescriptor struct {
	host string
	path string
}

// NewRequestDescriptor validates host and path. An empty path becomes "/"
// and a path without a leading slash gets one.
func NewRequestDescriptor(host, path string) (RequestDescriptor, error) {
	if host == "" {
		return RequestDescriptor{}, ErrEmptyHost
	}
	if path == "" {
		path = "/"
	} else if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return RequestDescriptor{host: host, path: path}, nil
}

// Host returns the network location (host[:port]).
func (d RequestDescriptor) Host() string { return d.host }

// Path returns the request path, always starting with "/".
func (d RequestDescriptor) Path() string { return d.path }

// IsZero reports whether d was never constructed.
func (d RequestDescriptor) IsZero() bool { return d.host == "" }

// String renders d as a proxy:// URL.
func (d RequestDescriptor) String() string {
	return ProxyScheme + "://" + d.host + d.path
}

// TransportAttempt holds the two candidate URLs tried for a descriptor, in order.
type TransportAttempt struct {
	Secure   string
	Insecure string
}

// NewTransportAttempt derives the secure and insecure candidates for d.
func NewTransportAttempt(d RequestDescriptor) TransportAttempt {
	return TransportAttempt{
		Secure:   "https://" + d.host + d.path,
		Insecure: "http://" + d.host + d.path,
	}
}
