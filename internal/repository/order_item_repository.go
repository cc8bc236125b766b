package repository

import (
	"context"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
)

// 明細は注文と同時に作成され、その後は編集不可
type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
