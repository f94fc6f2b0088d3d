package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ステータス文字列の上限（orders.statusの列幅、文字数）
const maxStatusLen = 50

type OrderUsecase struct {
	tx       repo.TransactionManager
	orders   repo.OrderRepository
	items    repo.OrderItemRepository
	users    repo.UserRepository
	notifier Notifier
	log      *zap.Logger
}

// DI
func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	items repo.OrderItemRepository,
	users repo.UserRepository,
	notifier Notifier,
	log *zap.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:       tx,
		orders:   orders,
		items:    items,
		users:    users,
		notifier: notifier,
		log:      log.Named("order"),
	}
}

type ConfirmOrderInput struct {
	ContactID         int64
	DeliveryAddressID int64
}

// 注文（明細と合計は現在の価格で計算）
type OrderResponse struct {
	ID                int64           `json:"id"`
	Status            string          `json:"status"`
	ContactID         *int64          `json:"contact_id"`
	DeliveryAddressID *int64          `json:"delivery_address_id"`
	CreatedAt         time.Time       `json:"created_at"`
	Items             []PricedLine    `json:"items"`
	Total             decimal.Decimal `json:"total"`
}

type StatusChange struct {
	OrderID   int64  `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

func toOrderResponse(o model.Order, rows []repo.PricedItem) OrderResponse {
	lines, total := PriceLines(rows)
	return OrderResponse{
		ID:                o.ID,
		Status:            string(o.Status),
		ContactID:         o.ContactID,
		DeliveryAddressID: o.DeliveryAddressID,
		CreatedAt:         o.CreatedAt,
		Items:             lines,
		Total:             total,
	}
}

// Confirm はカートを確定する。
// 連絡先・住所は本人のもののみ。メール通知はcommit後に積み、失敗しても確定は戻さない
func (u *OrderUsecase) Confirm(ctx context.Context, userID int64, in ConfirmOrderInput) (OrderResponse, error) {
	if userID <= 0 {
		return OrderResponse{}, errUnauthorized
	}
	fields := map[string]string{}
	if in.ContactID <= 0 {
		fields["contact_id"] = "required"
	}
	if in.DeliveryAddressID <= 0 {
		fields["delivery_address_id"] = "required"
	}
	if len(fields) > 0 {
		return OrderResponse{}, NewValidationError(fields)
	}

	var (
		order   model.Order
		contact model.Contact
		address model.DeliveryAddress
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Orders().LockCart(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "cart not found")
		}
		if err != nil {
			return errDB
		}

		contact, err = r.Contacts().FindOwned(ctx, in.ContactID, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "contact not found")
		}
		if err != nil {
			return errDB
		}

		address, err = r.DeliveryAddresses().FindOwned(ctx, in.DeliveryAddressID, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "delivery address not found")
		}
		if err != nil {
			return errDB
		}

		n, err := r.OrderItems().CountByOrderID(ctx, cart.ID)
		if err != nil {
			return errDB
		}
		if n == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		// status='cart'の時だけ更新される
		if err := r.Orders().Confirm(ctx, cart.ID, contact.ID, address.ID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "cart not found")
			}
			return errDB
		}

		order = cart
		order.Status = model.OrderStatusConfirmed
		order.ContactID = &contact.ID
		order.DeliveryAddressID = &address.ID
		return nil
	})
	if err != nil {
		return OrderResponse{}, err
	}

	u.log.Info("order confirmed", zap.Int64("order_id", order.ID), zap.Int64("user_id", userID))
	u.notifyConfirmed(ctx, userID, order, contact, address)

	rows, err := u.items.ListPriced(ctx, []int64{order.ID})
	if err != nil {
		return OrderResponse{}, errDB
	}
	return toOrderResponse(order, rows), nil
}

func (u *OrderUsecase) notifyConfirmed(ctx context.Context, userID int64, order model.Order, contact model.Contact, address model.DeliveryAddress) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		u.log.Warn("skip confirmation mail: user lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	u.notifier.OrderConfirmed(ctx, *user, order, contact, address)
}

// History はcart以外の注文を新しい順で返す
func (u *OrderUsecase) History(ctx context.Context, userID int64) ([]OrderResponse, error) {
	if userID <= 0 {
		return nil, errUnauthorized
	}

	orders, err := u.orders.ListHistory(ctx, userID)
	if err != nil {
		return nil, errDB
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	rows, err := u.items.ListPriced(ctx, ids)
	if err != nil {
		return nil, errDB
	}
	byOrder := groupByOrder(rows)

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o, byOrder[o.ID]))
	}
	return out, nil
}

// Detail は確定済み（confirmed）の自分の注文だけ返す
func (u *OrderUsecase) Detail(ctx context.Context, userID int64, orderID int64) (OrderResponse, error) {
	if userID <= 0 {
		return OrderResponse{}, errUnauthorized
	}
	if orderID <= 0 {
		return OrderResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByIDForUser(ctx, orderID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderResponse{}, errDB
	}
	if o.Status != model.OrderStatusConfirmed {
		return OrderResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	rows, err := u.items.ListPriced(ctx, []int64{o.ID})
	if err != nil {
		return OrderResponse{}, errDB
	}
	return toOrderResponse(o, rows), nil
}

// UpdateStatus は持ち主がステータスを自由な文字列に変える。
// cartへ戻すこと、未確定のカートを変えることはできない
func (u *OrderUsecase) UpdateStatus(ctx context.Context, userID int64, orderID int64, status string) (StatusChange, error) {
	if userID <= 0 {
		return StatusChange{}, errUnauthorized
	}
	if orderID <= 0 {
		return StatusChange{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(status))
	if newStatus == "" {
		return StatusChange{}, NewValidationError(map[string]string{"status": "required"})
	}
	if utf8.RuneCountInString(string(newStatus)) > maxStatusLen {
		return StatusChange{}, NewValidationError(map[string]string{"status": "must be at most 50"})
	}
	if newStatus == model.OrderStatusCart {
		return StatusChange{}, NewValidationError(map[string]string{"status": "cannot be cart"})
	}

	var out StatusChange
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUser(ctx, orderID, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return errDB
		}
		if o.Status == model.OrderStatusCart {
			return NewHTTPError(http.StatusConflict, "order is not confirmed")
		}

		if err := r.Orders().UpdateStatus(ctx, o.ID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return errDB
		}

		beforeJSON, _ := json.Marshal(map[string]string{"status": string(o.Status)})
		afterJSON, _ := json.Marshal(map[string]string{"status": string(newStatus)})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  userID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   string(beforeJSON),
			AfterJSON:    string(afterJSON),
			CreatedAt:    time.Now(),
		}); err != nil {
			return errDB
		}

		out = StatusChange{
			OrderID:   o.ID,
			OldStatus: string(o.Status),
			NewStatus: string(newStatus),
		}
		return nil
	})
	if err != nil {
		return StatusChange{}, err
	}

	if !newStatus.Known() {
		u.log.Info("order moved to custom status", zap.Int64("order_id", orderID), zap.String("status", string(newStatus)))
	}
	return out, nil
}
