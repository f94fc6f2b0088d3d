package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

type ShopRepository interface {
	// urlは新規作成時だけ使う
	GetOrCreateByName(ctx context.Context, name string, url string) (model.Shop, bool, error)
	// 既に紐づいていれば何もしない
	AddCategory(ctx context.Context, shopID, categoryID int64) error
}

type CategoryRepository interface {
	// IDはフィード側の値。nameは新規作成時だけ使う
	GetOrCreate(ctx context.Context, id int64, name string) (model.Category, bool, error)
}
