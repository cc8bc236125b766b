package repository

import (
	"context"
	"errors"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	repo "github.com/caffineConfession/QROrderingApp-sub000/internal/repository"

	"gorm.io/gorm"
)

type MenuItemGormRepository struct {
	db *gorm.DB
}

func NewMenuItemGormRepository(db *gorm.DB) *MenuItemGormRepository {
	return &MenuItemGormRepository{db: db}
}

func (r *MenuItemGormRepository) FindByProductAndServing(ctx context.Context, productID int64, servingType model.ServingType) (model.MenuItem, error) {
	var mi model.MenuItem
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND serving_type = ?", productID, servingType).
		First(&mi).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MenuItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.MenuItem{}, err
	}
	return mi, nil
}

func (r *MenuItemGormRepository) ListByProductIDs(ctx context.Context, productIDs []int64) ([]model.MenuItem, error) {
	if len(productIDs) == 0 {
		return []model.MenuItem{}, nil
	}
	var items []model.MenuItem
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("product_id asc, serving_type asc").
		Find(&items).Error
	if err != nil {
		return []model.MenuItem{}, err
	}
	return items, nil
}

// 在庫が足りるときだけ減らす。残が0以下になったら同じUPDATEで
// is_available=false に倒す（手動で無効化済みのものは触らない）。
// WHERE stock_quantity >= qty により並行する完了同士は片方しか通らない。
func (r *MenuItemGormRepository) DecrementStockIfEnough(ctx context.Context, productID int64, servingType model.ServingType, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.MenuItem{}).
		Where("product_id = ? AND serving_type = ? AND stock_quantity >= ?", productID, servingType, qty).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"is_available":   gorm.Expr("CASE WHEN stock_quantity - ? <= 0 THEN false ELSE is_available END", qty),
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

func (r *MenuItemGormRepository) Create(ctx context.Context, mi model.MenuItem) (model.MenuItem, error) {
	if err := r.db.WithContext(ctx).Create(&mi).Error; err != nil {
		return model.MenuItem{}, err
	}
	return mi, nil
}

func (r *MenuItemGormRepository) UpdatePrice(ctx context.Context, id int64, price int64) error {
	res := r.db.WithContext(ctx).Model(&model.MenuItem{}).
		Where("id = ?", id).
		Update("price", price)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 補充。auto-disableの解除はここ（明示的な操作）でだけ起きる
func (r *MenuItemGormRepository) SetStock(ctx context.Context, id int64, qty int64, available bool) error {
	res := r.db.WithContext(ctx).Model(&model.MenuItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": qty,
			"is_available":   available,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MenuItemGormRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	res := r.db.WithContext(ctx).Model(&model.MenuItem{}).
		Where("id = ?", id).
		Update("is_available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
