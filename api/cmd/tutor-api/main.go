package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"geo-tutor/api/internal/app"
	"geo-tutor/api/internal/config"
	"geo-tutor/api/internal/handle"
	"geo-tutor/api/internal/httpserver"
	"geo-tutor/api/internal/util"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := util.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init failed", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}()

	h := handle.New(a.Tutor, logger.Named("http"))
	router := httpserver.NewRouter(h, httpserver.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		DB:             a.Store,
		Log:            logger.Named("access"),
	})

	if err := httpserver.Run(ctx, ":"+cfg.Port, router, logger); err != nil {
		logger.Error("http server failed", zap.Error(err))
		return
	}
	logger.Info("tutor-api exited")
}
