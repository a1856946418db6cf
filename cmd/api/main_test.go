package main

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasteapi/internal/config"
)

func TestRun_ReturnsStartupErrors(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")

	cfg := &config.AppConfig{
		Port:     "0",
		Database: config.DatabaseConfig{Port: "5432"},
	}

	var buf bytes.Buffer
	err := run(cfg, zerolog.New(&buf))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to database")
	assert.Contains(t, err.Error(), "host, port, user, and name are required")
	assert.Contains(t, buf.String(), "tracing_configured")
}
