// Package address turns user-typed address bar text into a RequestDescriptor.
package address

import (
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"github.com/raysh454/proxyview/internal/model"
)

// Normalized is the outcome of normalising one piece of input.
type Normalized struct {
	Descriptor model.RequestDescriptor

	// Display is the canonicalized input text the UI reflects verbatim.
	Display string
}

// Normalizer is safe for concurrent use; it holds only its configuration.
type Normalizer struct {
	cfg Config
}

func NewNormalizer(cfg Config) *Normalizer {
	def := DefaultConfig()
	if strings.TrimSpace(cfg.DefaultTarget) == "" {
		cfg.DefaultTarget = def.DefaultTarget
	}
	if cfg.AssumedScheme == "" {
		cfg.AssumedScheme = def.AssumedScheme
	}
	return &Normalizer{cfg: cfg}
}

// Normalize uses DefaultConfig.
func Normalize(input string) Normalized {
	return NewNormalizer(DefaultConfig()).Normalize(input)
}

// Normalize never fails. Input that does not split into a network location
// is used whole as the host with path "/".
func (n *Normalizer) Normalize(input string) Normalized {
	text := strings.TrimSpace(input)
	if text == "" {
		text = strings.TrimSpace(n.cfg.DefaultTarget)
	}
	raw := text

	if !hasScheme(text) {
		text = n.cfg.AssumedScheme + "://" + text
	}

	host, path := split(text)
	if host == "" {
		host, path = raw, "/"
	}

	d, err := model.NewRequestDescriptor(host, path)
	if err != nil {
		// host is non-empty here; keep the invariant even if that changes.
		d, _ = model.NewRequestDescriptor(raw, "/")
	}
	return Normalized{Descriptor: d, Display: text}
}

// schemePrefix matches an RFC 3986 scheme at the very start of the text, so
// "://" later in a path or query does not count.
var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

func hasScheme(text string) bool {
	return schemePrefix.MatchString(text)
}

// split returns the network location and escaped path of text, or empty
// strings when it does not parse.
func split(text string) (string, string) {
	u, err := url.Parse(text)
	if err != nil || u.Host == "" {
		return "", ""
	}

	host := u.Host
	if !isASCII(host) {
		host = punycode(u)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return host, path
}

// punycode converts an internationalised hostname, keeping any port.
func punycode(u *url.URL) string {
	name, err := idna.Lookup.ToASCII(u.Hostname())
	if err != nil {
		return u.Host
	}
	if port := u.Port(); port != "" {
		return net.JoinHostPort(name, port)
	}
	return name
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
