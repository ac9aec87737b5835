package webclient

import "github.com/raysh454/proxyview/internal/logging"

func init() {
	RegisterBackend(string(BackendNetHTTP), func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewNetHTTPClient(cfg, logger, nil)
	})
	RegisterBackend(string(BackendResty), func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewRestyClient(cfg, logger, nil)
	})
}
