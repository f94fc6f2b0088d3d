// Package app はcmd配下で共通の組み立て（DB・キュー・usecase・handler）。
package app

import (
	"context"
	"fmt"
	"time"

	"ecshop/internal/config"
	"ecshop/internal/domain/task"
	"ecshop/internal/handler"
	"ecshop/internal/infra/auth"
	"ecshop/internal/infra/db"
	"ecshop/internal/infra/feedloader"
	"ecshop/internal/infra/mail"
	"ecshop/internal/infra/queue"
	infraRepo "ecshop/internal/infra/repository"
	"ecshop/internal/logger"
	"ecshop/internal/server"
	"ecshop/internal/usecase"
	"ecshop/internal/worker"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Queue    queue.Queue
	Importer *usecase.CatalogImportUsecase
	Handlers server.Handlers

	redisQueue *queue.RedisQueue
	memQueue   *queue.MemoryQueue
}

// Build はDBに接続してマイグレーションし、全usecaseとhandlerを組み立てる
func Build(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	gormDB, err := db.Connect(cfg, logger.NewGormLogger(log, logger.GormLevel(cfg.LogLevel)))
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	//REDIS_ADDRが無ければプロセス内キュー
	var q queue.Queue
	if cfg.RedisAddr != "" {
		rq, err := queue.NewRedisQueue(ctx, queue.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.TaskQueueKey,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		q = rq
	} else {
		q = queue.NewMemoryQueue(1024)
	}

	return New(cfg, log, gormDB, q), nil
}

// New は接続済みのDBとキューから組み立てる
func New(cfg config.Config, log *zap.Logger, gormDB *gorm.DB, q queue.Queue) *App {
	a := &App{Config: cfg, Log: log, DB: gormDB, Queue: q}
	switch v := q.(type) {
	case *queue.RedisQueue:
		a.redisQueue = v
	case *queue.MemoryQueue:
		a.memQueue = v
	}
	a.wire(gormDB)
	return a
}

func (a *App) wire(gormDB *gorm.DB) {
	cfg := a.Config

	//Repository（GORM実装）生成
	tx := infraRepo.NewTxManagerGorm(gormDB)
	users := infraRepo.NewUserGormRepository(gormDB)
	products := infraRepo.NewProductGormRepository(gormDB)
	infos := infraRepo.NewProductInfoGormRepository(gormDB)
	orders := infraRepo.NewOrderGormRepository(gormDB)
	items := infraRepo.NewOrderItemGormRepository(gormDB)
	contacts := infraRepo.NewContactGormRepository(gormDB)
	addresses := infraRepo.NewDeliveryAddressGormRepository(gormDB)
	audits := infraRepo.NewAuditLogGormRepository(gormDB)

	notifier := usecase.NewEmailNotifier(a.Queue, cfg.MailFrom, a.Log)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	//Usecase生成
	a.Importer = usecase.NewCatalogImportUsecase(tx, feedloader.New(30*time.Second), a.Queue, cfg.ShopURLTemplate, a.Log)
	authUC := usecase.NewAuthUsecase(users, hasher, issuer, notifier, a.Log)
	productUC := usecase.NewProductUsecase(products, infos)
	cartUC := usecase.NewCartUsecase(tx, orders, items)
	orderUC := usecase.NewOrderUsecase(tx, orders, items, users, notifier, a.Log)
	addressUC := usecase.NewAddressUsecase(addresses, contacts)
	auditUC := usecase.NewAuditLogUsecase(audits)

	//Handler生成
	a.Handlers = server.Handlers{
		Auth:    handler.NewAuthHandler(authUC),
		Product: handler.NewProductHandler(productUC),
		Cart:    handler.NewCartHandler(cartUC),
		Order:   handler.NewOrderHandler(orderUC),
		Address: handler.NewAddressHandler(addressUC),
		Admin:   handler.NewAdminHandler(a.Importer, auditUC),
	}
}

// InProcessQueue はインメモリキューのときtrue。この場合APIプロセス内でワーカーを回す
func (a *App) InProcessQueue() bool {
	return a.memQueue != nil
}

// RecoverQueue は前回落ちたワーカーが処理中だったジョブをキューに戻す
func (a *App) RecoverQueue(ctx context.Context) {
	if a.redisQueue == nil {
		return
	}
	n, err := a.redisQueue.Recover(ctx)
	if err != nil {
		a.Log.Error("recover queue", zap.Error(err))
		return
	}
	if n > 0 {
		a.Log.Info("requeued in-flight tasks", zap.Int("count", n))
	}
}

// MailSender はSMTP_HOSTが無ければログに出すだけ
func (a *App) MailSender() mail.Sender {
	if a.Config.SMTPHost == "" {
		return mail.NewLogSender(a.Log)
	}
	return mail.NewSMTPSender(a.Config.SMTPHost, a.Config.SMTPPort, a.Config.SMTPUser, a.Config.SMTPPassword)
}

// NewWorkerPool はメール送信とカタログ取込を処理するワーカー
func (a *App) NewWorkerPool() *worker.Pool {
	p := worker.NewPool(a.Queue, a.Log, a.Config.WorkerConcurrency, a.Config.TaskMaxAttempts)
	p.Handle(task.TypeEmailSend, worker.EmailHandler(a.MailSender()))
	p.Handle(task.TypeCatalogImport, worker.ImportHandler(a.Importer))
	return p
}

func (a *App) Close() {
	if a.redisQueue != nil {
		if err := a.redisQueue.Close(); err != nil {
			a.Log.Warn("close redis", zap.Error(err))
		}
	}
	if a.memQueue != nil {
		a.memQueue.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
