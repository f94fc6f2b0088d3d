package repository

import (
	"context"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type shopGormRepository struct {
	db *gorm.DB
}

// DI
func NewShopGormRepository(db *gorm.DB) repo.ShopRepository {
	return &shopGormRepository{db: db}
}

func (r *shopGormRepository) GetOrCreateByName(ctx context.Context, name string, url string) (model.Shop, bool, error) {
	var s model.Shop
	created, err := getOrCreate(r.db.WithContext(ctx), &s, model.Shop{Name: name, URL: url}, "name = ?", name)
	if err != nil {
		return model.Shop{}, false, err
	}
	return s, created, nil
}

// 紐づけ済みなら何もしない
func (r *shopGormRepository) AddCategory(ctx context.Context, shopID, categoryID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ShopCategory{ShopID: shopID, CategoryID: categoryID}).Error
}

type categoryGormRepository struct {
	db *gorm.DB
}

// DI
func NewCategoryGormRepository(db *gorm.DB) repo.CategoryRepository {
	return &categoryGormRepository{db: db}
}

// IDで探す。名前が変わっていても上書きしない
func (r *categoryGormRepository) GetOrCreate(ctx context.Context, id int64, name string) (model.Category, bool, error) {
	var c model.Category
	created, err := getOrCreate(r.db.WithContext(ctx), &c, model.Category{ID: id, Name: name}, "id = ?", id)
	if err != nil {
		return model.Category{}, false, err
	}
	return c, created, nil
}
