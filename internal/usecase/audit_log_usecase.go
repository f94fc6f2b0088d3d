package usecase

import (
	"context"
	"net/http"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"
)

// 管理者向けの監査ログ一覧
type AuditLogUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditLogUsecase(logs repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs}
}

// List は操作・対象で絞り込む。
// actionだけ指定されたら対象種別はactionから決め、resource_idは対象種別がないと使えない
func (u *AuditLogUsecase) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if f.Limit < 0 || f.Limit > 200 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	if f.Action != "" {
		rt, ok := f.Action.Resource()
		if !ok {
			return nil, NewValidationError(map[string]string{"action": "unknown"})
		}
		if f.ResourceType == "" {
			f.ResourceType = rt
		}
		if f.ResourceType != rt {
			return nil, NewValidationError(map[string]string{"resource_type": "does not match action"})
		}
	}
	if f.ResourceType != "" && !f.ResourceType.Known() {
		return nil, NewValidationError(map[string]string{"resource_type": "must be order or shop"})
	}
	if f.ResourceID != 0 && f.ResourceType == "" {
		return nil, NewValidationError(map[string]string{"resource_type": "required with resource_id"})
	}
	if f.ResourceID < 0 {
		return nil, NewValidationError(map[string]string{"resource_id": "invalid"})
	}

	logs, err := u.logs.List(ctx, f)
	if err != nil {
		return nil, errDB
	}
	return logs, nil
}
