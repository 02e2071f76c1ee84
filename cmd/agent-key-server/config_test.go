package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestRedactedHidesSecrets(t *testing.T) {
	var c Config
	c.DB.Url = "postgres://user:pw@host/db"
	c.Http.AdminAPIKey = "metrics-key"
	c.Vault.MasterKeyPath = "/keys/master.key"

	r := c.redacted()
	assert.Equal(t, "***", r.DB.Url)
	assert.Equal(t, "***", r.Http.AdminAPIKey)
	assert.Equal(t, "/keys/master.key", r.Vault.MasterKeyPath)
	assert.Equal(t, "postgres://user:pw@host/db", c.DB.Url)
}
