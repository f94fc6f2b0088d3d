package repository

import (
	"context"

	"ecshop/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 一覧検索
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
}

// 一覧の1行（カテゴリ名つき）
type ProductRow struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category"`
}

// 出品の1行（ショップ名つき）
type ListingRow struct {
	ID       int64           `json:"id"`
	ShopID   int64           `json:"shop_id"`
	ShopName string          `json:"shop"`
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	PriceRRC decimal.Decimal `json:"price_rrc"`
}

// 出品ごとの属性
type ParameterRow struct {
	ProductInfoID int64  `json:"-"`
	Name          string `json:"name"`
	Value         string `json:"value"`
}

// 商品の取得と、取込用のget-or-create。
// GetOrCreate系は (見つかった/作った行, 作ったか, error) を返す
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]ProductRow, int64, error)
	FindByID(ctx context.Context, id int64) (ProductRow, error)

	// categoryIDは新規作成時だけ使う
	GetOrCreateByName(ctx context.Context, name string, categoryID int64) (model.Product, bool, error)
}

type ProductInfoRepository interface {
	FindByID(ctx context.Context, id int64) (model.ProductInfo, error)
	ListByProductID(ctx context.Context, productID int64) ([]ListingRow, error)
	ListParameters(ctx context.Context, productInfoIDs []int64) ([]ParameterRow, error)

	// (product_id, shop_id)で探し、無ければinfoの値で作る
	GetOrCreate(ctx context.Context, info model.ProductInfo) (model.ProductInfo, bool, error)
}

type ParameterRepository interface {
	GetOrCreateByName(ctx context.Context, name string) (model.Parameter, bool, error)
	// (product_info_id, parameter_id, value)で1件
	GetOrCreateValue(ctx context.Context, productInfoID, parameterID int64, value string) (model.ProductParameter, bool, error)
}
