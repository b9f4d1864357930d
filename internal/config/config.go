// Package config reads runtime configuration from the environment: listen
// address, database file path, and webhook worker count, each with a
// sensible fallback.
package config

import (
	"os"
	"strconv"
)

type Config struct {
	ListenAddr          string
	DatabaseFilePath    string
	WebhookWorkerCount  int
}

func FromEnv() Config {
	return Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		DatabaseFilePath:   getEnv("DATABASE_FILEPATH", "sheetcore.db"),
		WebhookWorkerCount: getEnvInt("WEBHOOK_WORKERS", 5),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
