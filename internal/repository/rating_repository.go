package repository

import (
	"context"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
)

type RatingRepository interface {
	Create(ctx context.Context, r model.Rating) error
	FindByOrderID(ctx context.Context, orderID int64) (model.Rating, error)
}
