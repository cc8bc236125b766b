package model

import "time"

type OrderStatus string

const (
	OrderStatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT_CONFIRMATION"
	OrderStatusPendingPrep     OrderStatus = "PENDING_PREPARATION"
	OrderStatusPreparing       OrderStatus = "PREPARING"
	OrderStatusReadyForPickup  OrderStatus = "READY_FOR_PICKUP"
	OrderStatusCompleted       OrderStatus = "COMPLETED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
)

// 終端（COMPLETED/CANCELLED）からは遷移不可
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodRazorpay PaymentMethod = "RAZORPAY"
	PaymentMethodUPI      PaymentMethod = "UPI"
)

type OrderSource string

const (
	OrderSourceCustomerOnline OrderSource = "CUSTOMER_ONLINE"
	OrderSourceStaffManual    OrderSource = "STAFF_MANUAL"
)

// 注文は監査のため削除しない
type Order struct {
	ID               int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID         string        `gorm:"type:varchar(36);not null;uniqueIndex" json:"public_id"`
	CustomerName     string        `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone    string        `gorm:"type:varchar(32)" json:"customer_phone"`
	TotalAmount      int64         `gorm:"not null" json:"total_amount"`
	PaymentMethod    PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus    PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	Status           OrderStatus   `gorm:"type:varchar(40);not null;index" json:"status"`
	OrderSource      OrderSource   `gorm:"type:varchar(20);not null" json:"order_source"`
	GatewayOrderID   *string       `gorm:"type:varchar(64);uniqueIndex" json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string       `gorm:"type:varchar(64)" json:"gateway_payment_id,omitempty"`
	TakenByID        *int64        `gorm:"index" json:"taken_by_id,omitempty"`
	ProcessedByID    *int64        `gorm:"index" json:"processed_by_id,omitempty"`
	CreatedAt        time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
