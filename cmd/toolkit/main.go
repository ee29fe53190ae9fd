package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lubosr/linuxconfig-toolkit/internal/app"
	"github.com/lubosr/linuxconfig-toolkit/internal/config"
	"github.com/lubosr/linuxconfig-toolkit/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	command := "track"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	switch command {
	case "track":
		err = application.RunTracker(ctx)
	case "attention":
		err = application.RunAttention(ctx)
	case "daemon":
		err = application.RunDaemon(ctx)
	default:
		logger.Error("unknown command, expected track|attention|daemon", "command", command)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("run failed", "command", command, "error", err)
		os.Exit(1)
	}
}
