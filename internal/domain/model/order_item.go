package model

import "time"

// 明細のスナップショット（名前・価格）は購入時点で凍結する。
// 後からProductを編集・削除してもレシートは変わらない。
type OrderItem struct {
	ID                  int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64       `gorm:"not null;index" json:"order_id"`
	ProductID           int64       `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string      `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	CategorySnapshot    string      `gorm:"type:varchar(64);not null" json:"category_snapshot"`
	ServingType         ServingType `gorm:"type:varchar(20);not null" json:"serving_type"`
	Quantity            int64       `gorm:"not null" json:"quantity"`
	PriceAtPurchase     int64       `gorm:"not null" json:"price_at_purchase"`
	Customization       string      `gorm:"type:varchar(255)" json:"customization"`
	CreatedAt           time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}
