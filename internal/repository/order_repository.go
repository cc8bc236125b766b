package repository

import (
	"context"
	"errors"
	"time"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	Source string
	From   *time.Time
	To     *time.Time
}

// 支払い確定時に更新するフィールドのまとまり
type PaidUpdate struct {
	GatewayPaymentID *string
	ProcessedByID    *int64
}

// ステータス別の売上集計行
type SalesRow struct {
	Status     model.OrderStatus `json:"status"`
	OrderCount int64             `json:"order_count"`
	Revenue    int64             `json:"revenue"`
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByPublicID(ctx context.Context, publicID string) (model.Order, error)

	// 状態遷移の読み→判定→書きを不可分にするため行ロック付きで読む
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	FindByPublicIDForUpdate(ctx context.Context, publicID string) (model.Order, error)

	// (内部ID, ゲートウェイ注文ID) の複合一致。別注文への署名流用を防ぐ
	FindForGatewayVerifyForUpdate(ctx context.Context, publicID string, gatewayOrderID string) (model.Order, error)
	FindByGatewayOrderIDForUpdate(ctx context.Context, gatewayOrderID string) (model.Order, error)

	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, processedByID int64) error
	MarkPaid(ctx context.Context, orderID int64, upd PaidUpdate) error

	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
	SalesSummary(ctx context.Context, from time.Time) ([]SalesRow, error)
}
