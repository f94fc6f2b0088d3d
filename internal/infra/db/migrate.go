package db

import (
	"fmt"

	"ecshop/internal/domain/model"

	"gorm.io/gorm"
)

// Models はマイグレーション対象のテーブル
func Models() []any {
	return []any{
		&model.User{},
		&model.Shop{},
		&model.Category{},
		&model.ShopCategory{},
		&model.Product{},
		&model.ProductInfo{},
		&model.Parameter{},
		&model.ProductParameter{},
		&model.Contact{},
		&model.DeliveryAddress{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	}
}

// cart注文はユーザーごとに1件
const singleCartIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_single_cart ON orders (user_id) WHERE status = 'cart'`

// Migrate はテーブルとindexを作る。PostgreSQLとSQLiteの両方で動く
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(singleCartIndex).Error; err != nil {
		return fmt.Errorf("create single cart index: %w", err)
	}
	return nil
}
