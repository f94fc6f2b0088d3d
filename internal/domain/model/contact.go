package model

import "time"

// 注文確定時に選ぶ連絡先
type Contact struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	LastName   string    `gorm:"type:varchar(50);not null" json:"last_name"`
	FirstName  string    `gorm:"type:varchar(50);not null" json:"first_name"`
	MiddleName string    `gorm:"type:varchar(50)" json:"middle_name"`
	Email      string    `gorm:"type:varchar(255);not null" json:"email"`
	Phone      string    `gorm:"type:varchar(20);not null" json:"phone"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}
