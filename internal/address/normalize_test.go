package address_test

import (
	"testing"

	"github.com/raysh454/proxyview/internal/address"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		in          string
		wantHost    string
		wantPath    string
		wantDisplay string
	}{
		{"bare host", "example.com", "example.com", "/", "https://example.com"},
		{"host and path", "example.com/docs/a.html", "example.com", "/docs/a.html", "https://example.com/docs/a.html"},
		{"https prefix", "https://example.com/x", "example.com", "/x", "https://example.com/x"},
		{"http prefix kept for display", "http://example.com", "example.com", "/", "http://example.com"},
		{"port kept", "localhost:8080/api", "localhost:8080", "/api", "https://localhost:8080/api"},
		{"surrounding space", "  example.org/a  ", "example.org", "/a", "https://example.org/a"},
		{"query dropped", "example.com/search?q=go", "example.com", "/search", "https://example.com/search?q=go"},
		{"escaped path preserved", "example.com/a%20b", "example.com", "/a%20b", "https://example.com/a%20b"},
		{"idn host", "https://例え.テスト/a", "xn--r8jz45g.xn--zckzah", "/a", "https://例え.テスト/a"},
		{"url in path", "web.archive.org/web/2020/https://example.com", "web.archive.org", "/web/2020/https://example.com", "https://web.archive.org/web/2020/https://example.com"},
		{"url in query", "example.com/redirect?to=http://x", "example.com", "/redirect", "https://example.com/redirect?to=http://x"},
		{"uppercase scheme", "HTTPS://example.com/a", "example.com", "/a", "HTTPS://example.com/a"},
		{"empty uses default", "", "www.example.com", "/", "https://www.example.com"},
		{"blank uses default", "   ", "www.example.com", "/", "https://www.example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := address.Normalize(tt.in)
			if got.Descriptor.Host() != tt.wantHost {
				t.Errorf("host = %q, want %q", got.Descriptor.Host(), tt.wantHost)
			}
			if got.Descriptor.Path() != tt.wantPath {
				t.Errorf("path = %q, want %q", got.Descriptor.Path(), tt.wantPath)
			}
			if got.Display != tt.wantDisplay {
				t.Errorf("display = %q, want %q", got.Display, tt.wantDisplay)
			}
		})
	}
}

func TestNormalize_MalformedFallsBackToWholeInput(t *testing.T) {
	t.Parallel()
	got := address.Normalize("%zz")
	if got.Descriptor.Host() != "%zz" {
		t.Errorf("expected whole input as host, got %q", got.Descriptor.Host())
	}
	if got.Descriptor.Path() != "/" {
		t.Errorf("expected path /, got %q", got.Descriptor.Path())
	}
}

func TestNormalize_HostPathRoundTrip(t *testing.T) {
	t.Parallel()
	hosts := []string{"example.com", "a.b.c.example.net", "10.0.0.1", "Example.COM", "host:9000"}
	paths := []string{"", "/", "/a", "/a/b/", "/index.html", "/deep/nested/path/file.js", "/web/2020/https://example.com", "/go/http://x"}

	for _, h := range hosts {
		for _, p := range paths {
			got := address.Normalize(h + p).Descriptor
			wantPath := p
			if wantPath == "" {
				wantPath = "/"
			}
			if got.Host() != h || got.Path() != wantPath {
				t.Errorf("Normalize(%q) = {%q, %q}, want {%q, %q}", h+p, got.Host(), got.Path(), h, wantPath)
			}
		}
	}
}

func TestNormalizer_CustomDefaultTarget(t *testing.T) {
	t.Parallel()
	n := address.NewNormalizer(address.Config{DefaultTarget: "golang.org/doc"})
	got := n.Normalize("")
	if got.Descriptor.Host() != "golang.org" || got.Descriptor.Path() != "/doc" {
		t.Errorf("unexpected descriptor %s", got.Descriptor)
	}
}
