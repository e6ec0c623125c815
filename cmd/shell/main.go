package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/bootstrap"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/shell"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New(logger.Config{}).Fatal("load config", "error", err)
	}
	// info records would interleave with the menu
	level := cfg.Log.Level
	if level == logger.EMPTY || level == logger.INFO {
		level = logger.WARN
	}
	log := logger.New(logger.Config{Level: level, Format: cfg.Log.Format, Service: "airtickets-shell"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatal("init app", "error", err)
	}
	defer app.Close()

	if err := shell.New(os.Stdin, os.Stdout, app.ShellServices(), log).Run(ctx); err != nil {
		log.Error("shell stopped", "error", err)
		app.Close()
		os.Exit(1)
	}
}
