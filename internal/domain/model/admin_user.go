package model

import "time"

type Role string

const (
	RoleManualOrderTaker Role = "MANUAL_ORDER_TAKER"
	RoleOrderProcessor   Role = "ORDER_PROCESSOR"
	RoleBusinessManager  Role = "BUSINESS_MANAGER"
)

type AdminUser struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	Role         Role   `gorm:"type:varchar(32);not null" json:"role"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
