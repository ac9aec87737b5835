package webclient

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/raysh454/proxyview/internal/logging"
)

var ErrUnknownBackend = errors.New("webclient: unknown backend")

// BackendConstructor builds one client for cfg.
type BackendConstructor func(cfg Config, logger logging.Logger) (WebClient, error)

var backends = struct {
	sync.RWMutex
	ctors map[Backend]BackendConstructor
}{ctors: map[Backend]BackendConstructor{}}

// RegisterBackend makes a backend selectable by name. A later registration
// under the same name replaces the earlier one.
func RegisterBackend(name string, ctor BackendConstructor) {
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	if b == "" || ctor == nil {
		return
	}
	backends.Lock()
	defer backends.Unlock()
	backends.ctors[b] = ctor
}

// ParseBackend resolves a user-supplied name. Empty selects nethttp.
func ParseBackend(name string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	if b == "" {
		return BackendNetHTTP, nil
	}
	backends.RLock()
	_, ok := backends.ctors[b]
	backends.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w %q, expected one of %v", ErrUnknownBackend, name, ListBackends())
	}
	return b, nil
}

// NewWebClient builds a client with the backend named in cfg.
func NewWebClient(cfg Config, logger logging.Logger) (WebClient, error) {
	b, err := ParseBackend(string(cfg.Backend))
	if err != nil {
		return nil, err
	}
	backends.RLock()
	ctor := backends.ctors[b]
	backends.RUnlock()

	wc, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("construct %s webclient: %w", b, err)
	}
	if wc == nil {
		return nil, fmt.Errorf("construct %s webclient: constructor returned nil", b)
	}
	return wc, nil
}

// ListBackends returns the registered backend names, sorted.
func ListBackends() []string {
	backends.RLock()
	defer backends.RUnlock()
	names := make([]string, 0, len(backends.ctors))
	for b := range backends.ctors {
		names = append(names, string(b))
	}
	slices.Sort(names)
	return names
}
