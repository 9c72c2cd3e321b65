package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/restobooking/config"
	"github.com/Domenick1991/restobooking/internal/bootstrap"
	"github.com/Domenick1991/restobooking/internal/logger"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.L().Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		logger.L().Fatalf("init app: %v", err)
	}
	defer app.Close()

	if err := bootstrap.Run(ctx, cfg, app); err != nil {
		logger.L().Errorf("server error: %v", err)
	}
}
