package model

// 価格は持たない。表示時にproduct_infosと結合して求める
type OrderItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64 `gorm:"not null;uniqueIndex:idx_order_items_key,priority:1" json:"order_id"`
	ProductID int64 `gorm:"not null;uniqueIndex:idx_order_items_key,priority:2" json:"product_id"`
	ShopID    int64 `gorm:"not null;uniqueIndex:idx_order_items_key,priority:3" json:"shop_id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`
}
