package repository

import (
	"context"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
)

// 商品カタログの永続化だけを約束。
// 在庫・ステータスへの書き込みはここからはしない。
type ProductRepository interface {
	ListAvailable(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SetAvailability(ctx context.Context, id int64, available bool) error
}
