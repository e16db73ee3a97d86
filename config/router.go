package config

import (
	"fmt"
	"time"
)

/* --------------------------------- Router Config Defaults -------------------------------- */

const (
	// default port of the watch router
	defaultPort = 3070

	// defaultMaxRequestHeaderBytes is the default maximum size of the HTTP request header.
	defaultMaxRequestHeaderBytes = 1 << 20 // 1 MB

	// https://pkg.go.dev/net/http#Server
	// HTTP server's default timeout values.
	defaultHTTPServerReadTimeout  = 5 * time.Second
	defaultHTTPServerWriteTimeout = 30 * time.Second
	defaultHTTPServerIdleTimeout  = 120 * time.Second

	// defaultPollInterval is the period of the latest block poll backing /healthz.
	defaultPollInterval = 10 * time.Second
)

/* --------------------------------- Router Config Struct -------------------------------- */

// RouterConfig configures the server exposing /healthz and /metrics while watching the gateway.
// See default values above.
type RouterConfig struct {
	Port                  int           `yaml:"port"`
	MaxRequestHeaderBytes int           `yaml:"max_request_header_bytes"`
	ReadTimeout           time.Duration `yaml:"read_timeout"`
	WriteTimeout          time.Duration `yaml:"write_timeout"`
	IdleTimeout           time.Duration `yaml:"idle_timeout"`
	PollInterval          time.Duration `yaml:"poll_interval"`
}

/* --------------------------------- Router Config Private Helpers -------------------------------- */

// hydrateRouterDefaults assigns default values to RouterConfig fields if they are not set.
func (c *RouterConfig) hydrateRouterDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.MaxRequestHeaderBytes == 0 {
		c.MaxRequestHeaderBytes = defaultMaxRequestHeaderBytes
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaultHTTPServerReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaultHTTPServerWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = defaultHTTPServerIdleTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}
}

func (c RouterConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: router.port %d out of range", errInvalidConfig, c.Port)
	}
	if c.PollInterval < time.Second {
		return fmt.Errorf("%w: router.poll_interval %v must be at least 1s", errInvalidConfig, c.PollInterval)
	}
	return nil
}
