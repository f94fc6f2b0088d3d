package repository

import (
	"context"
	"errors"
	"strings"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
)

type productGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) repo.ProductRepository {
	return &productGormRepository{db: db}
}

func (r *productGormRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("products AS p").
		Joins("JOIN categories c ON c.id = p.category_id")
}

// 一覧（名前の部分一致・カテゴリで絞り込み）
func (r *productGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]repo.ProductRow, int64, error) {
	filter := func(tx *gorm.DB) *gorm.DB {
		if s := strings.TrimSpace(q.Q); s != "" {
			tx = tx.Where("LOWER(p.name) LIKE ?", "%"+strings.ToLower(s)+"%")
		}
		if q.CategoryID != nil {
			tx = tx.Where("p.category_id = ?", *q.CategoryID)
		}
		return tx
	}

	var total int64
	if err := filter(r.baseQuery(ctx)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []repo.ProductRow{}
	err := filter(r.baseQuery(ctx)).
		Select("p.id, p.name, p.category_id, c.name AS category_name").
		Order("p.id ASC").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *productGormRepository) FindByID(ctx context.Context, id int64) (repo.ProductRow, error) {
	var rows []repo.ProductRow
	err := r.baseQuery(ctx).
		Select("p.id, p.name, p.category_id, c.name AS category_name").
		Where("p.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return repo.ProductRow{}, err
	}
	if len(rows) == 0 {
		return repo.ProductRow{}, repo.ErrNotFound
	}
	return rows[0], nil
}

// 既存商品のカテゴリは更新しない
func (r *productGormRepository) GetOrCreateByName(ctx context.Context, name string, categoryID int64) (model.Product, bool, error) {
	var p model.Product
	created, err := getOrCreate(r.db.WithContext(ctx), &p, model.Product{Name: name, CategoryID: categoryID}, "name = ?", name)
	if err != nil {
		return model.Product{}, false, err
	}
	return p, created, nil
}

type productInfoGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductInfoGormRepository(db *gorm.DB) repo.ProductInfoRepository {
	return &productInfoGormRepository{db: db}
}

func (r *productInfoGormRepository) FindByID(ctx context.Context, id int64) (model.ProductInfo, error) {
	var pi model.ProductInfo
	if err := r.db.WithContext(ctx).First(&pi, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ProductInfo{}, repo.ErrNotFound
		}
		return model.ProductInfo{}, err
	}
	return pi, nil
}

// 商品の出品一覧（ショップ名つき）
func (r *productInfoGormRepository) ListByProductID(ctx context.Context, productID int64) ([]repo.ListingRow, error) {
	rows := []repo.ListingRow{}
	err := r.db.WithContext(ctx).
		Table("product_infos AS pi").
		Select("pi.id, pi.shop_id, s.name AS shop_name, pi.name, pi.quantity, pi.price, pi.price_rrc").
		Joins("JOIN shops s ON s.id = pi.shop_id").
		Where("pi.product_id = ?", productID).
		Order("pi.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *productInfoGormRepository) ListParameters(ctx context.Context, productInfoIDs []int64) ([]repo.ParameterRow, error) {
	rows := []repo.ParameterRow{}
	if len(productInfoIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Table("product_parameters AS pp").
		Select("pp.product_info_id, pa.name, pp.value").
		Joins("JOIN parameters pa ON pa.id = pp.parameter_id").
		Where("pp.product_info_id IN ?", productInfoIDs).
		Order("pp.product_info_id ASC, pa.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// (product, shop)で探す。既存なら価格・在庫は更新しない
func (r *productInfoGormRepository) GetOrCreate(ctx context.Context, info model.ProductInfo) (model.ProductInfo, bool, error) {
	var pi model.ProductInfo
	created, err := getOrCreate(r.db.WithContext(ctx), &pi, info,
		"product_id = ? AND shop_id = ?", info.ProductID, info.ShopID)
	if err != nil {
		return model.ProductInfo{}, false, err
	}
	return pi, created, nil
}

type parameterGormRepository struct {
	db *gorm.DB
}

// DI
func NewParameterGormRepository(db *gorm.DB) repo.ParameterRepository {
	return &parameterGormRepository{db: db}
}

func (r *parameterGormRepository) GetOrCreateByName(ctx context.Context, name string) (model.Parameter, bool, error) {
	var p model.Parameter
	created, err := getOrCreate(r.db.WithContext(ctx), &p, model.Parameter{Name: name}, "name = ?", name)
	if err != nil {
		return model.Parameter{}, false, err
	}
	return p, created, nil
}

func (r *parameterGormRepository) GetOrCreateValue(ctx context.Context, productInfoID, parameterID int64, value string) (model.ProductParameter, bool, error) {
	var pp model.ProductParameter
	created, err := getOrCreate(r.db.WithContext(ctx), &pp,
		model.ProductParameter{ProductInfoID: productInfoID, ParameterID: parameterID, Value: value},
		"product_info_id = ? AND parameter_id = ? AND value = ?", productInfoID, parameterID, value)
	if err != nil {
		return model.ProductParameter{}, false, err
	}
	return pp, created, nil
}
