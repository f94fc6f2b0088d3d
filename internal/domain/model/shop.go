package model

import "time"

// 仕入れ先ショップ。nameが業務キー
type Shop struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	URL       string    `gorm:"type:varchar(255)" json:"url"`
	CreatedAt time.Time `json:"-"`
}

// ショップとカテゴリの多対多
type ShopCategory struct {
	ShopID     int64 `gorm:"primaryKey;autoIncrement:false"`
	CategoryID int64 `gorm:"primaryKey;autoIncrement:false;index"`
}
