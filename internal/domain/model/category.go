package model

// IDはフィード側が採番したものをそのまま使う
type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"type:varchar(50);not null" json:"name"`
}
