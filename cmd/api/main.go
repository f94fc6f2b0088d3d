package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"ecshop/internal/app"
	"ecshop/internal/config"
	"ecshop/internal/logger"
	"ecshop/internal/scheduler"
	"ecshop/internal/server"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envは任意
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.LogLevel, cfg.GoEnv)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("build app", zap.Error(err))
	}
	defer a.Close()

	//インメモリキューならワーカーも同じプロセスで回す
	var wg sync.WaitGroup
	if a.InProcessQueue() {
		pool := a.NewWorkerPool()
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Run(ctx)
		}()
	}

	if cfg.ImportCron != "" {
		s := scheduler.NewImportScheduler(a.Importer, cfg.ImportFeeds, log)
		if err := s.Start(cfg.ImportCron); err != nil {
			log.Fatal("start scheduler", zap.Error(err))
		}
		defer s.Stop()
	}

	e := server.New(cfg, log, a.Handlers)
	if err := server.Start(ctx, e, ":"+cfg.Port, log); err != nil {
		log.Error("server stopped", zap.Error(err))
	}
	stop()
	wg.Wait()
}
