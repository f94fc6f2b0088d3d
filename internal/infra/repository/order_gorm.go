package repository

import (
	"context"
	"errors"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// ユーザーのcart注文を取得し、無ければ作成。
// 部分ユニークindex (user_id) WHERE status='cart' が二重作成を防ぐ
func (r *OrderGormRepository) GetOrCreateCart(ctx context.Context, userID int64) (model.Order, bool, error) {
	var o model.Order
	created, err := getOrCreate(r.db.WithContext(ctx), &o,
		model.Order{UserID: userID, Status: model.OrderStatusCart},
		"user_id = ? AND status = ?", userID, model.OrderStatusCart)
	if err != nil {
		return model.Order{}, false, err
	}
	return o, created, nil
}

func (r *OrderGormRepository) FindCart(ctx context.Context, userID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.OrderStatusCart).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// cart注文を行ロックして取得
func (r *OrderGormRepository) LockCart(ctx context.Context, userID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND status = ?", userID, model.OrderStatusCart).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// status='cart'の時だけconfirmedにする（0件ならErrNotFound）
func (r *OrderGormRepository) Confirm(ctx context.Context, orderID, contactID, deliveryAddressID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusCart).
		Updates(map[string]any{
			"status":              model.OrderStatusConfirmed,
			"contact_id":          contactID,
			"delivery_address_id": deliveryAddressID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) FindByIDForUser(ctx context.Context, orderID, userID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// cart以外を新しい順
func (r *OrderGormRepository) ListHistory(ctx context.Context, userID int64) ([]model.Order, error) {
	items := []model.Order{}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, model.OrderStatusCart).
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

// 同じ(order, product, shop)は数量を加算（INSERT ... ON CONFLICT DO UPDATE）
func (r *OrderItemGormRepository) AddQuantity(ctx context.Context, orderID, productID, shopID, qty int64) (model.OrderItem, error) {
	if qty <= 0 {
		return model.OrderItem{}, errors.New("invalid quantity")
	}

	q := r.db.WithContext(ctx)
	item := model.OrderItem{OrderID: orderID, ProductID: productID, ShopID: shopID, Quantity: qty}
	err := q.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}, {Name: "product_id"}, {Name: "shop_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("order_items.quantity + excluded.quantity"),
		}),
	}).Create(&item).Error
	if err != nil {
		return model.OrderItem{}, err
	}

	var out model.OrderItem
	err = q.Where("order_id = ? AND product_id = ? AND shop_id = ?", orderID, productID, shopID).
		First(&out).Error
	if err != nil {
		return model.OrderItem{}, err
	}
	return out, nil
}

// ユーザーのcart注文の明細だけ削除できる
func (r *OrderItemGormRepository) DeleteFromCart(ctx context.Context, itemID, userID int64) error {
	cartIDs := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("id").
		Where("user_id = ? AND status = ?", userID, model.OrderStatusCart)

	res := r.db.WithContext(ctx).
		Where("id = ? AND order_id IN (?)", itemID, cartIDs).
		Delete(&model.OrderItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderItemGormRepository) CountByOrderID(ctx context.Context, orderID int64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.OrderItem{}).Where("order_id = ?", orderID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// 明細を現在のproduct_infosと結合して返す（価格はここで引く）
func (r *OrderItemGormRepository) ListPriced(ctx context.Context, orderIDs []int64) ([]repo.PricedItem, error) {
	rows := []repo.PricedItem{}
	if len(orderIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.id, oi.order_id, oi.product_id, p.name AS product_name, oi.shop_id, s.name AS shop_name, " +
			"pi.id AS product_info_id, oi.quantity, pi.price AS price").
		Joins("JOIN products p ON p.id = oi.product_id").
		Joins("JOIN shops s ON s.id = oi.shop_id").
		Joins("LEFT JOIN product_infos pi ON pi.product_id = oi.product_id AND pi.shop_id = oi.shop_id").
		Where("oi.order_id IN ?", orderIDs).
		Order("oi.order_id ASC, oi.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
