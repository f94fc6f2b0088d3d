package model

import "time"

// 注文ステータス。cart→confirmed以外は自由入力も受け付ける
type OrderStatus string

const (
	OrderStatusCart      OrderStatus = "cart"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusAssembled OrderStatus = "assembled"
	OrderStatusSent      OrderStatus = "sent"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// 既知のステータスか
func (s OrderStatus) Known() bool {
	switch s {
	case OrderStatusCart, OrderStatusConfirmed, OrderStatusAssembled,
		OrderStatusSent, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// status='cart' の行はユーザーごとに1件（部分ユニークindexはMigrateで作る）
type Order struct {
	ID                int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            int64       `gorm:"not null;index" json:"user_id"`
	Status            OrderStatus `gorm:"type:varchar(50);not null;index" json:"status"`
	ContactID         *int64      `json:"contact_id"`
	DeliveryAddressID *int64      `json:"delivery_address_id"`
	CreatedAt         time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
