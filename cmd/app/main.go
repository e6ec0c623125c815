package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airtickets/api"
	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/bootstrap"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/gin-gonic/gin"
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
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "airtickets-api"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatal("init app", "error", err)
	}
	defer app.Close()

	if cfg.Log.Level != logger.DEBUG {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(cfg.HTTP, app.APIServices(), log)

	if err := bootstrap.Run(ctx, cfg.HTTP, router, log); err != nil {
		log.Error("server error", "error", err)
		app.Close()
		os.Exit(1)
	}
}
