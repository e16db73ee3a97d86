// Package config loads the sequencer client configuration from YAML.
//
// Loading follows two steps: optional fields are hydrated with defaults, then
// the whole config is validated. A config that loads without error can be
// turned into client options without further checks.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

/* --------------------------------- Client Config Struct -------------------------------- */

// ClientConfig is the top level struct parsed from the YAML config file.
type ClientConfig struct {
	// GatewayURL is the sequencer gateway base URL, e.g. https://alpha-mainnet.starknet.io
	GatewayURL string `yaml:"gateway_url"`
	// APIKey is optional. When set it is sent in the throttling bypass header.
	APIKey string `yaml:"api_key"`

	// RequestTimeout bounds calls made without a caller deadline.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// AttemptTimeout bounds each attempt of a call.
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`

	// MaxConcurrentRequests caps requests in flight. 0 selects the default, the cap is always on.
	MaxConcurrentRequests int `yaml:"max_concurrent_requests"`
	// MaxResponseBodySize caps the size of a response body in bytes.
	MaxResponseBodySize int64 `yaml:"max_response_body_size"`

	Retry   RetryConfig   `yaml:"retry"`
	Logger  LoggerConfig  `yaml:"logger"`
	Metrics MetricsConfig `yaml:"metrics"`
	Router  RouterConfig  `yaml:"router"`
}

// LoadClientConfigFromYAML reads a YAML configuration file from the specified path
// and unmarshals its content into a ClientConfig instance.
func LoadClientConfigFromYAML(path string) (ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ClientConfig{}, err
	}
	return ParseClientConfig(data)
}

// ParseClientConfig unmarshals, hydrates and validates a YAML document.
func ParseClientConfig(data []byte) (ClientConfig, error) {
	var config ClientConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return ClientConfig{}, err
	}

	config.hydrateDefaults()
	return config, config.validate()
}

// NewClientConfig returns the default config for gatewayURL.
func NewClientConfig(gatewayURL string) (ClientConfig, error) {
	config := ClientConfig{GatewayURL: gatewayURL}
	config.hydrateDefaults()
	return config, config.validate()
}

/* --------------------------------- Client Config Hydration Helpers -------------------------------- */

func (c *ClientConfig) hydrateDefaults() {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.AttemptTimeout == 0 {
		c.AttemptTimeout = defaultAttemptTimeout
	}
	if c.MaxConcurrentRequests == 0 {
		c.MaxConcurrentRequests = defaultMaxConcurrentRequests
	}
	if c.MaxResponseBodySize == 0 {
		c.MaxResponseBodySize = defaultMaxResponseBodySize
	}
	c.Retry.hydrateRetryDefaults()
	c.Logger.hydrateLoggerDefaults()
	c.Router.hydrateRouterDefaults()
}

/* --------------------------------- Client Config Validation Helpers -------------------------------- */

var errInvalidConfig = errors.New("invalid config")

func (c ClientConfig) validate() error {
	if c.GatewayURL == "" {
		return fmt.Errorf("%w: gateway_url is required", errInvalidConfig)
	}
	u, err := url.Parse(c.GatewayURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: gateway_url %q must be an absolute http(s) URL", errInvalidConfig, c.GatewayURL)
	}
	if c.RequestTimeout < 0 || c.AttemptTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", errInvalidConfig)
	}
	if c.AttemptTimeout > c.RequestTimeout {
		return fmt.Errorf("%w: attempt_timeout %v exceeds request_timeout %v", errInvalidConfig, c.AttemptTimeout, c.RequestTimeout)
	}
	if c.MaxConcurrentRequests < 0 {
		return fmt.Errorf("%w: max_concurrent_requests must not be negative", errInvalidConfig)
	}
	if c.MaxResponseBodySize < 0 {
		return fmt.Errorf("%w: max_response_body_size must not be negative", errInvalidConfig)
	}
	if err := c.Retry.validate(); err != nil {
		return err
	}
	if err := c.Logger.Validate(); err != nil {
		return err
	}
	return c.Router.validate()
}
