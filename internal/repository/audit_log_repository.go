package repository

import (
	"context"
	"time"

	"ecshop/internal/domain/model"
)

// 監査ログの絞り込み。ゼロ値の項目は条件にしない
type AuditLogFilter struct {
	Action       model.AuditAction
	ResourceType model.AuditResourceType
	ResourceID   int64
	ActorUserID  int64
	Since        time.Time
	Limit        int
	Offset       int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	// 新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
