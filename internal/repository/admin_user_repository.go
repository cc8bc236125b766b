package repository

import (
	"context"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
)

type AdminUserRepository interface {
	FindByEmail(ctx context.Context, email string) (model.AdminUser, error)
	FindByID(ctx context.Context, id int64) (model.AdminUser, error)
	Create(ctx context.Context, u model.AdminUser) (model.AdminUser, error)
	List(ctx context.Context) ([]model.AdminUser, error)
}
