package repository

import (
	"context"

	"ecshop/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 明細と、(product, shop)で結合した現在の価格
// 出品が消えていればProductInfoIDとPriceはnull
type PricedItem struct {
	ID            int64
	OrderID       int64
	ProductID     int64
	ProductName   string
	ShopID        int64
	ShopName      string
	ProductInfoID *int64
	Quantity      int64
	Price         decimal.NullDecimal
}

type OrderItemRepository interface {
	// 同じ(order, product, shop)があれば数量を加算
	AddQuantity(ctx context.Context, orderID, productID, shopID, qty int64) (model.OrderItem, error)
	// ユーザーのcart注文の明細だけ消せる
	DeleteFromCart(ctx context.Context, itemID, userID int64) error
	CountByOrderID(ctx context.Context, orderID int64) (int64, error)
	ListPriced(ctx context.Context, orderIDs []int64) ([]PricedItem, error)
}
