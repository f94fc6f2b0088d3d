package usecase

import (
	repo "ecshop/internal/repository"

	"github.com/shopspring/decimal"
)

// 価格を引いた明細1行。出品が消えていればprice系はnull
type PricedLine struct {
	ID            int64            `json:"id"`
	ProductID     int64            `json:"product_id"`
	ProductName   string           `json:"product"`
	ShopID        int64            `json:"shop_id"`
	ShopName      string           `json:"shop"`
	ProductInfoID *int64           `json:"product_info_id"`
	Quantity      int64            `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"price"`
	LineTotal     *decimal.Decimal `json:"total"`
}

// PriceLines は明細ごとの小計と合計を計算する。
// 価格が引けない明細は合計に0として数える
func PriceLines(rows []repo.PricedItem) ([]PricedLine, decimal.Decimal) {
	lines := make([]PricedLine, 0, len(rows))
	total := decimal.Zero

	for _, r := range rows {
		line := PricedLine{
			ID:            r.ID,
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			ShopID:        r.ShopID,
			ShopName:      r.ShopName,
			ProductInfoID: r.ProductInfoID,
			Quantity:      r.Quantity,
		}
		if r.Price.Valid {
			unit := r.Price.Decimal
			sum := unit.Mul(decimal.NewFromInt(r.Quantity))
			line.UnitPrice = &unit
			line.LineTotal = &sum
			total = total.Add(sum)
		}
		lines = append(lines, line)
	}
	return lines, total
}

// 注文IDごとに分ける
func groupByOrder(rows []repo.PricedItem) map[int64][]repo.PricedItem {
	out := make(map[int64][]repo.PricedItem)
	for _, r := range rows {
		out[r.OrderID] = append(out[r.OrderID], r)
	}
	return out
}
