package repository

import (
	"context"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type auditLogGormRepository struct {
	db *gorm.DB
}

// DI
func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs := []model.AuditLog{}
	err := r.db.WithContext(ctx).
		Scopes(auditScope(f), pageScope(f.Limit, f.Offset)).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// 注文なら注文ID、ショップならショップIDでresource_idを引く
func auditScope(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Action != "" {
			q = q.Where("action = ?", f.Action)
		}
		if f.ResourceType != "" {
			q = q.Where("resource_type = ?", f.ResourceType)
			if f.ResourceID > 0 {
				q = q.Where("resource_id = ?", f.ResourceID)
			}
		}
		if f.ActorUserID > 0 {
			q = q.Where("actor_user_id = ?", f.ActorUserID)
		}
		if !f.Since.IsZero() {
			q = q.Where("created_at >= ?", f.Since)
		}
		return q
	}
}

func pageScope(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if limit <= 0 || limit > maxAuditLimit {
			limit = defaultAuditLimit
		}
		if offset < 0 {
			offset = 0
		}
		return q.Limit(limit).Offset(offset)
	}
}
