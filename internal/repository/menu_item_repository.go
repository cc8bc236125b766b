package repository

import (
	"context"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
)

// 在庫台帳。stock_quantity を減らすのは注文完了時のみ。
// 増やすのは店長の補充操作（SetStock）のみ。
type MenuItemRepository interface {
	FindByProductAndServing(ctx context.Context, productID int64, servingType model.ServingType) (model.MenuItem, error)
	ListByProductIDs(ctx context.Context, productIDs []int64) ([]model.MenuItem, error)

	// 在庫が足りるときだけ減算（条件付きUPDATE）。
	// 減算後の残が0以下なら同じ文で is_available=false にする。
	DecrementStockIfEnough(ctx context.Context, productID int64, servingType model.ServingType, qty int64) (bool, error)

	Create(ctx context.Context, mi model.MenuItem) (model.MenuItem, error)
	UpdatePrice(ctx context.Context, id int64, price int64) error
	SetStock(ctx context.Context, id int64, qty int64, available bool) error
	SetAvailability(ctx context.Context, id int64, available bool) error
}
