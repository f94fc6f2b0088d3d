package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

// 連絡先の保存・取得
type ContactRepository interface {
	Create(ctx context.Context, contact model.Contact) (model.Contact, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Contact, error)
	// 他人のものはErrNotFound
	FindOwned(ctx context.Context, id, userID int64) (model.Contact, error)
	DeleteOwned(ctx context.Context, id, userID int64) error
}

// 配送先住所の保存・取得
type DeliveryAddressRepository interface {
	Create(ctx context.Context, address model.DeliveryAddress) (model.DeliveryAddress, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.DeliveryAddress, error)
	FindOwned(ctx context.Context, id, userID int64) (model.DeliveryAddress, error)
	DeleteOwned(ctx context.Context, id, userID int64) error
}
