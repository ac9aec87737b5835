package webclient_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/raysh454/proxyview/internal/logging"
	"github.com/raysh454/proxyview/internal/webclient"
)

// TestNewNetHTTPClient_WithCustomClient verifies that a custom *http.Client can be injected
func TestNewNetHTTPClient_WithCustomClient(t *testing.T) {
	t.Parallel()
	customClient := &http.Client{Timeout: 3 * time.Second}
	client, err := webclient.NewNetHTTPClient(webclient.Config{}, logging.Nop(), customClient)
	if err != nil {
		t.Fatalf("NewNetHTTPClient returned error: %v", err)
	}
	defer client.Close()

	nhc := client.(*webclient.NetHTTPClient)
	if nhc.HTTPClient() != customClient {
		t.Error("expected injected client to be used")
	}
}

func TestNewHTTPClient_VerifyTLSToggle(t *testing.T) {
	t.Parallel()
	for _, verify := range []bool{true, false} {
		c := webclient.NewHTTPClient(webclient.Config{VerifyTLS: verify, Timeout: time.Second})
		tr, ok := c.Transport.(*http.Transport)
		if !ok {
			t.Fatalf("expected *http.Transport, got %T", c.Transport)
		}
		if tr.TLSClientConfig.InsecureSkipVerify == verify {
			t.Errorf("VerifyTLS=%v produced InsecureSkipVerify=%v", verify, tr.TLSClientConfig.InsecureSkipVerify)
		}
	}
}

func TestNewHTTPClient_UsesTimeout(t *testing.T) {
	t.Parallel()
	c := webclient.NewHTTPClient(webclient.Config{Timeout: 7 * time.Second})
	if c.Timeout != 7*time.Second {
		t.Errorf("expected 7s timeout, got %s", c.Timeout)
	}
}

func TestNetHTTPClient_Do_NilRequest_ReturnsError(t *testing.T) {
	t.Parallel()
	client, _ := webclient.NewNetHTTPClient(webclient.Config{}, logging.Nop(), nil)
	defer client.Close()

	_, err := client.Do(context.Background(), nil)
	if !errors.Is(err, webclient.ErrNilRequest) {
		t.Fatalf("expected ErrNilRequest, got %v", err)
	}
}

// TestNetHTTPClient_Close verifies that Close() does not panic and returns nil
func TestNetHTTPClient_Close(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewNetHTTPClient(webclient.Config{}, logging.Nop(), nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient returned error: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
}
