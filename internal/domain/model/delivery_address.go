package model

import "time"

// 配送先住所
type DeliveryAddress struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//番地など
	AddressLine string `gorm:"type:varchar(255);not null" json:"address_line"`

	City string `gorm:"type:varchar(100);not null" json:"city"`

	//郵便番号
	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"`

	Country string `gorm:"type:varchar(100);not null" json:"country"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
