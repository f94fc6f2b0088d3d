// Package scheduler はフィードの定期取込。
package scheduler

import (
	"context"
	"fmt"
	"time"

	"ecshop/internal/usecase"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type AsyncImporter interface {
	ImportAsync(ctx context.Context, in usecase.ImportInput) (string, error)
}

// ImportScheduler はcron式のタイミングでフィードごとに取込ジョブを積む
type ImportScheduler struct {
	cron     *cron.Cron
	importer AsyncImporter
	feeds    []string
	log      *zap.Logger
}

func NewImportScheduler(importer AsyncImporter, feeds []string, log *zap.Logger) *ImportScheduler {
	return &ImportScheduler{
		cron:     cron.New(),
		importer: importer,
		feeds:    feeds,
		log:      log.Named("scheduler"),
	}
}

// Start はcron式（5項目）でジョブを登録して開始する
func (s *ImportScheduler) Start(expr string) error {
	if _, err := s.cron.AddFunc(expr, s.EnqueueAll); err != nil {
		return fmt.Errorf("invalid IMPORT_CRON %q: %w", expr, err)
	}
	s.cron.Start()
	s.log.Info("import scheduler started", zap.String("cron", expr), zap.Strings("feeds", s.feeds))
	return nil
}

// 実行中のジョブが終わるのを待って止める
func (s *ImportScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *ImportScheduler) EnqueueAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, f := range s.feeds {
		id, err := s.importer.ImportAsync(ctx, usecase.ImportInput{Source: f})
		if err != nil {
			s.log.Error("enqueue scheduled import", zap.String("source", f), zap.Error(err))
			continue
		}
		s.log.Info("scheduled import enqueued", zap.String("source", f), zap.String("task_id", id))
	}
}
