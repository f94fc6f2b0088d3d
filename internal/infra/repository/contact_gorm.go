package repository

import (
	"context"
	"errors"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
)

type contactGormRepository struct {
	db *gorm.DB
}

// DI
func NewContactGormRepository(db *gorm.DB) repo.ContactRepository {
	return &contactGormRepository{db: db}
}

func (r *contactGormRepository) Create(ctx context.Context, c model.Contact) (model.Contact, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Contact{}, err
	}
	return c, nil
}

func (r *contactGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Contact, error) {
	list := []model.Contact{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// 他人の連絡先は見つからない扱い
func (r *contactGormRepository) FindOwned(ctx context.Context, id, userID int64) (model.Contact, error) {
	var c model.Contact
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Contact{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Contact{}, err
	}
	return c, nil
}

func (r *contactGormRepository) DeleteOwned(ctx context.Context, id, userID int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Contact{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
