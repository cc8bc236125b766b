package model

import "time"

type ServingType string

const (
	ServingTypeCup  ServingType = "CUP"
	ServingTypeCone ServingType = "CONE"
)

// 在庫を持つ販売単位。(product_id, serving_type) で一意。
// stock_quantity は常に 0 以上。0 になったら is_available は自動で false（片方向）。
type MenuItem struct {
	ID            int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID     int64       `gorm:"not null;index;uniqueIndex:idx_menu_product_serving" json:"product_id"`
	ServingType   ServingType `gorm:"type:varchar(20);not null;uniqueIndex:idx_menu_product_serving" json:"serving_type"`
	Price         int64       `gorm:"not null" json:"price"`
	StockQuantity int64       `gorm:"not null;default:0" json:"stock_quantity"`
	IsAvailable   bool        `gorm:"not null;default:true" json:"is_available"`
	CreatedAt     time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
