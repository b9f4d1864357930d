package main

import (
	"os"

	"github.com/gosheetlab/sheetcore/internal/config"
	"github.com/gosheetlab/sheetcore/internal/httpapi"
	"github.com/gosheetlab/sheetcore/internal/logging"
)

const exitCodeMainError = 1

var logger = logging.New("sheetd")

func main() {
	cfg := config.FromEnv()

	app, err := httpapi.Build(cfg)
	if err != nil {
		logger.Printf("startup failed: %s", err)
		os.Exit(exitCodeMainError)
	}

	if err := app.Run(cfg.ListenAddr); err != nil {
		logger.Printf("server exited: %s", err)
		os.Exit(exitCodeMainError)
	}
}
