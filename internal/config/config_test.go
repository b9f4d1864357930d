package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_FILEPATH", "")
	t.Setenv("WEBHOOK_WORKERS", "")

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "sheetcore.db", cfg.DatabaseFilePath)
	assert.Equal(t, 5, cfg.WebhookWorkerCount)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("DATABASE_FILEPATH", "/tmp/custom.db")
	t.Setenv("WEBHOOK_WORKERS", "2")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/custom.db", cfg.DatabaseFilePath)
	assert.Equal(t, 2, cfg.WebhookWorkerCount)
}

func TestFromEnv_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("WEBHOOK_WORKERS", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, 5, cfg.WebhookWorkerCount)
}
