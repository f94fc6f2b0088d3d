package usecase

import (
	"context"
	"errors"
	"net/http"

	repo "ecshop/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// カートはstatus='cart'の注文で、ユーザーごとに1件
type CartUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	items  repo.OrderItemRepository
}

func NewCartUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	items repo.OrderItemRepository,
) *CartUsecase {
	return &CartUsecase{
		tx:     tx,
		orders: orders,
		items:  items,
	}
}

type CartResponse struct {
	OrderID *int64          `json:"order_id"`
	Empty   bool            `json:"empty"`
	Message string          `json:"message,omitempty"`
	Items   []PricedLine    `json:"items"`
	Total   decimal.Decimal `json:"total"`
}

type AddCartItemInput struct {
	ProductInfoID int64
	Quantity      int64
}

type CartItemResponse struct {
	ID            int64 `json:"id"`
	OrderID       int64 `json:"order_id"`
	ProductInfoID int64 `json:"product_info_id"`
	ProductID     int64 `json:"product_id"`
	ShopID        int64 `json:"shop_id"`
	Quantity      int64 `json:"quantity"`
}

func emptyCart() CartResponse {
	return CartResponse{
		Empty:   true,
		Message: "cart is empty",
		Items:   []PricedLine{},
		Total:   decimal.Zero,
	}
}

// GetCart はカートを現在の価格で返す。カートが無ければ空の結果（エラーではない）
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, errUnauthorized
	}

	cart, err := u.orders.FindCart(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return emptyCart(), nil
	}
	if err != nil {
		return CartResponse{}, errDB
	}

	rows, err := u.items.ListPriced(ctx, []int64{cart.ID})
	if err != nil {
		return CartResponse{}, errDB
	}
	if len(rows) == 0 {
		out := emptyCart()
		out.OrderID = &cart.ID
		return out, nil
	}

	lines, total := PriceLines(rows)
	return CartResponse{
		OrderID: &cart.ID,
		Items:   lines,
		Total:   total,
	}, nil
}

// AddItem はカートに出品を追加する。同じ(product, shop)は数量を加算
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartItemInput) (CartItemResponse, error) {
	if userID <= 0 {
		return CartItemResponse{}, errUnauthorized
	}
	if in.ProductInfoID <= 0 {
		return CartItemResponse{}, NewValidationError(map[string]string{"product_info_id": "required"})
	}
	if in.Quantity < 1 {
		return CartItemResponse{}, NewValidationError(map[string]string{"quantity": "must be at least 1"})
	}

	var out CartItemResponse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		info, err := r.ProductInfos().FindByID(ctx, in.ProductInfoID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return errDB
		}

		// カート取得（無ければ作成）
		cart, _, err := r.Orders().GetOrCreateCart(ctx, userID)
		if err != nil {
			return errDB
		}

		item, err := r.OrderItems().AddQuantity(ctx, cart.ID, info.ProductID, info.ShopID, in.Quantity)
		if err != nil {
			return errDB
		}

		out = CartItemResponse{
			ID:            item.ID,
			OrderID:       cart.ID,
			ProductInfoID: info.ID,
			ProductID:     item.ProductID,
			ShopID:        item.ShopID,
			Quantity:      item.Quantity,
		}
		return nil
	})
	if err != nil {
		return CartItemResponse{}, err
	}
	return out, nil
}

// RemoveItem は明細を削除する。確定済み注文の明細は消せない（404）
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, itemID int64) error {
	if userID <= 0 {
		return errUnauthorized
	}
	if itemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.items.DeleteFromCart(ctx, itemID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return errDB
	}
	return nil
}
