package repository

import (
	"context"
	"errors"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
)

type deliveryAddressGormRepository struct {
	db *gorm.DB
}

// DI
func NewDeliveryAddressGormRepository(db *gorm.DB) repo.DeliveryAddressRepository {
	return &deliveryAddressGormRepository{db: db}
}

// 住所を作成
func (r *deliveryAddressGormRepository) Create(ctx context.Context, a model.DeliveryAddress) (model.DeliveryAddress, error) {
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return model.DeliveryAddress{}, err
	}
	return a, nil
}

// ユーザーの住所一覧を返す
func (r *deliveryAddressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.DeliveryAddress, error) {
	list := []model.DeliveryAddress{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *deliveryAddressGormRepository) FindOwned(ctx context.Context, id, userID int64) (model.DeliveryAddress, error) {
	var a model.DeliveryAddress
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DeliveryAddress{}, repo.ErrNotFound
	}
	if err != nil {
		return model.DeliveryAddress{}, err
	}
	return a, nil
}

// 住所を削除
func (r *deliveryAddressGormRepository) DeleteOwned(ctx context.Context, id, userID int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.DeliveryAddress{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
