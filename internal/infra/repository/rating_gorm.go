package repository

import (
	"context"
	"errors"

	"github.com/caffineConfession/QROrderingApp-sub000/internal/domain/model"
	repo "github.com/caffineConfession/QROrderingApp-sub000/internal/repository"

	"gorm.io/gorm"
)

type RatingGormRepository struct {
	db *gorm.DB
}

func NewRatingGormRepository(db *gorm.DB) *RatingGormRepository {
	return &RatingGormRepository{db: db}
}

func (r *RatingGormRepository) Create(ctx context.Context, rating model.Rating) error {
	if err := r.db.WithContext(ctx).Create(&rating).Error; err != nil {
		return err
	}
	return nil
}

func (r *RatingGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Rating{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Rating{}, err
	}
	return rating, nil
}
