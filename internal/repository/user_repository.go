package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。メール重複はErrConflict
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//最終ログイン時刻を更新
	TouchLastLogin(ctx context.Context, userID int64) error
}
