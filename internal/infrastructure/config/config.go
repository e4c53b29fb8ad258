package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Transport modes for the MCP server.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds all configuration for the Google Custom Search MCP server.
// Missing search-engine or credential settings are not load errors: the
// server still starts and every tool call then returns the matching
// structured error, so the protocol boundary never sees a crash.
type Config struct {
	// Transport and HTTP server
	Transport string `env:"MCP_TRANSPORT" envDefault:"stdio"` // stdio or http
	HTTPPort  string `env:"MCP_HTTP_PORT" envDefault:"3000"`
	LogLevel  string `env:"MCP_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"MCP_LOG_FORMAT" envDefault:"json"` // json or console

	// Search Configuration
	SearchEngineID       string `env:"GOOGLE_SEARCH_ENGINE_ID"`
	ServiceAccountFile   string `env:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	ServiceAccountBase64 string `env:"GOOGLE_SERVICE_ACCOUNT_BASE64"`
	SearchEndpoint       string `env:"GOOGLE_CSE_ENDPOINT"` // override for tests/proxies

	// HTTP Client Performance
	SearchHTTPTimeout     int `env:"SEARCH_HTTP_TIMEOUT" envDefault:"10"` // seconds
	SearchMaxConnsPerHost int `env:"SEARCH_MAX_CONNS_PER_HOST" envDefault:"50"`
	SearchMaxIdleConns    int `env:"SEARCH_MAX_IDLE_CONNS" envDefault:"100"`
	SearchIdleConnTimeout int `env:"SEARCH_IDLE_CONN_TIMEOUT" envDefault:"90"` // seconds

	// Retry Configuration
	SearchRetryMaxAttempts   int     `env:"SEARCH_RETRY_MAX_ATTEMPTS" envDefault:"3"`
	SearchRetryInitialDelay  int     `env:"SEARCH_RETRY_INITIAL_DELAY" envDefault:"250"` // milliseconds
	SearchRetryMaxDelay      int     `env:"SEARCH_RETRY_MAX_DELAY" envDefault:"2000"`    // milliseconds
	SearchRetryBackoffFactor float64 `env:"SEARCH_RETRY_BACKOFF_FACTOR" envDefault:"2.0"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
	case TransportStdio:
		cfg.Transport = TransportStdio
	case TransportHTTP:
		cfg.Transport = TransportHTTP
	default:
		return nil, fmt.Errorf("unsupported MCP_TRANSPORT %q: use %q or %q", cfg.Transport, TransportStdio, TransportHTTP)
	}

	return cfg, nil
}

// CredentialSourceLabel names the configured credential mechanism for
// startup logging. The value never includes the credential itself.
func (c *Config) CredentialSourceLabel() string {
	switch {
	case c.ServiceAccountFile != "":
		return "file-based"
	case c.ServiceAccountBase64 != "":
		return "base64-encoded"
	default:
		return "unconfigured"
	}
}
