package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ecshop/internal/app"
	"ecshop/internal/config"
	"ecshop/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.LogLevel, cfg.GoEnv)
	defer func() { _ = log.Sync() }()

	if cfg.RedisAddr == "" {
		log.Fatal("REDIS_ADDR is required for the standalone worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("build app", zap.Error(err))
	}
	defer a.Close()

	a.RecoverQueue(ctx)

	log.Info("worker started", zap.Int("concurrency", cfg.WorkerConcurrency))
	a.NewWorkerPool().Run(ctx)
	log.Info("worker stopped")
}
