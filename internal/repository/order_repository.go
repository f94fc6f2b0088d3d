package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

type OrderRepository interface {
	// ユーザーのcart注文を取得し、無ければ作成
	GetOrCreateCart(ctx context.Context, userID int64) (model.Order, bool, error)
	FindCart(ctx context.Context, userID int64) (model.Order, error)
	// cart注文を行ロックして取得
	LockCart(ctx context.Context, userID int64) (model.Order, error)

	// cart→confirmed。status='cart'のときだけ更新する
	Confirm(ctx context.Context, orderID, contactID, deliveryAddressID int64) error

	FindByIDForUser(ctx context.Context, orderID, userID int64) (model.Order, error)
	// cart以外を新しい順
	ListHistory(ctx context.Context, userID int64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}
