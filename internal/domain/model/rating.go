package model

import "time"

// 注文ごとに1件だけ（order_id uniqueIndex）
type Rating struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"not null;uniqueIndex" json:"order_id"`
	Score     int       `gorm:"not null" json:"score"`
	Comment   string    `gorm:"type:varchar(512)" json:"comment"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
