package repository

import (
	"context"

	repo "ecshop/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	tx *gorm.DB
}

func (r *txReposGorm) Shops() repo.ShopRepository           { return NewShopGormRepository(r.tx) }
func (r *txReposGorm) Categories() repo.CategoryRepository  { return NewCategoryGormRepository(r.tx) }
func (r *txReposGorm) Products() repo.ProductRepository     { return NewProductGormRepository(r.tx) }
func (r *txReposGorm) ProductInfos() repo.ProductInfoRepository {
	return NewProductInfoGormRepository(r.tx)
}
func (r *txReposGorm) Parameters() repo.ParameterRepository { return NewParameterGormRepository(r.tx) }
func (r *txReposGorm) Orders() repo.OrderRepository         { return NewOrderGormRepository(r.tx) }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository { return NewOrderItemGormRepository(r.tx) }
func (r *txReposGorm) Contacts() repo.ContactRepository     { return NewContactGormRepository(r.tx) }
func (r *txReposGorm) DeliveryAddresses() repo.DeliveryAddressRepository {
	return NewDeliveryAddressGormRepository(r.tx)
}
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository { return NewAuditLogGormRepository(r.tx) }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(&txReposGorm{tx: tx})
	})
}
