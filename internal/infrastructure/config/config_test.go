package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, "3000", cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10, cfg.SearchHTTPTimeout)
	assert.Equal(t, 3, cfg.SearchRetryMaxAttempts)
	assert.Equal(t, 250, cfg.SearchRetryInitialDelay)
}

func TestLoadConfigNormalizesTransport(t *testing.T) {
	t.Setenv("MCP_TRANSPORT", " HTTP ")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, TransportHTTP, cfg.Transport)
}

func TestLoadConfigRejectsUnknownTransport(t *testing.T) {
	t.Setenv("MCP_TRANSPORT", "websocket")

	_, err := LoadConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MCP_TRANSPORT")
}

func TestLoadConfigAllowsMissingSearchSettings(t *testing.T) {
	cfg, err := LoadConfig()

	require.NoError(t, err, "missing engine id or credentials must not block startup")
	assert.Empty(t, cfg.SearchEngineID)
	assert.Empty(t, cfg.ServiceAccountFile)
	assert.Empty(t, cfg.ServiceAccountBase64)
}

func TestCredentialSourceLabel(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "file", cfg: Config{ServiceAccountFile: "/etc/creds.json"}, want: "file-based"},
		{name: "base64", cfg: Config{ServiceAccountBase64: "Zm9v"}, want: "base64-encoded"},
		{name: "file wins over base64", cfg: Config{ServiceAccountFile: "/etc/creds.json", ServiceAccountBase64: "Zm9v"}, want: "file-based"},
		{name: "neither", cfg: Config{}, want: "unconfigured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.CredentialSourceLabel())
		})
	}
}
