package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品。nameで全ショップ共通
type Product struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"type:varchar(80);uniqueIndex;not null" json:"name"`
	CategoryID int64     `gorm:"not null;index" json:"category_id"`
	CreatedAt  time.Time `json:"-"`
}

// ショップごとの出品（価格と在庫を持つ）
type ProductInfo struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64           `gorm:"not null;uniqueIndex:idx_product_infos_product_shop,priority:1" json:"product_id"`
	ShopID    int64           `gorm:"not null;uniqueIndex:idx_product_infos_product_shop,priority:2;index" json:"shop_id"`
	Name      string          `gorm:"type:varchar(80)" json:"name"`
	Quantity  int64           `gorm:"not null;default:0" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	PriceRRC  decimal.Decimal `gorm:"column:price_rrc;type:numeric(10,2);not null" json:"price_rrc"`
	CreatedAt time.Time       `json:"-"`
}

// 属性名（全体で名前ごとに1件）
type Parameter struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(40);uniqueIndex;not null" json:"name"`
}

// 出品ごとの属性値
type ProductParameter struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductInfoID int64  `gorm:"not null;uniqueIndex:idx_product_parameters_key,priority:1" json:"product_info_id"`
	ParameterID   int64  `gorm:"not null;uniqueIndex:idx_product_parameters_key,priority:2" json:"parameter_id"`
	Value         string `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_parameters_key,priority:3" json:"value"`
}
