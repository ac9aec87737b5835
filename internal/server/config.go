package server

import "time"

type Config struct {
	// ListenAddr is the HTTP listen address of the gateway.
	ListenAddr string

	// ReadTimeout bounds reading a client request.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing a reply. It must exceed two relay attempts.
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:   "127.0.0.1:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
	}
}
