package usecase

import (
	"context"
	"fmt"
	"strings"

	"ecshop/internal/domain/model"
	"ecshop/internal/domain/task"

	"go.uber.org/zap"
)

// ジョブをキューに積む約束
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, t task.Task) error
}

// 通知。失敗しても呼び出し元には返さない
type Notifier interface {
	OrderConfirmed(ctx context.Context, user model.User, order model.Order, contact model.Contact, address model.DeliveryAddress)
	Registered(ctx context.Context, user model.User)
}

// メール送信ジョブを積む Notifier
type EmailNotifier struct {
	q    TaskEnqueuer
	from string
	log  *zap.Logger
}

func NewEmailNotifier(q TaskEnqueuer, from string, log *zap.Logger) *EmailNotifier {
	return &EmailNotifier{q: q, from: from, log: log.Named("notifier")}
}

func (n *EmailNotifier) OrderConfirmed(ctx context.Context, user model.User, order model.Order, contact model.Contact, address model.DeliveryAddress) {
	fullName := strings.TrimSpace(strings.Join([]string{contact.LastName, contact.FirstName, contact.MiddleName}, " "))

	var b strings.Builder
	fmt.Fprintf(&b, "Your order #%d has been confirmed.\n\n", order.ID)
	fmt.Fprintf(&b, "Contact: %s, %s, %s\n", fullName, contact.Email, contact.Phone)
	fmt.Fprintf(&b, "Delivery address: %s, %s, %s, %s\n", address.AddressLine, address.City, address.PostalCode, address.Country)

	n.enqueue(ctx, task.EmailPayload{
		Subject: fmt.Sprintf("Order #%d confirmed", order.ID),
		Body:    b.String(),
		From:    n.from,
		To:      []string{user.Email},
	})
}

func (n *EmailNotifier) Registered(ctx context.Context, user model.User) {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = user.Email
	}
	n.enqueue(ctx, task.EmailPayload{
		Subject: "Welcome",
		Body:    fmt.Sprintf("Hello, %s!\n\nYour account has been created.\n", name),
		From:    n.from,
		To:      []string{user.Email},
	})
}

func (n *EmailNotifier) enqueue(ctx context.Context, p task.EmailPayload) {
	t, err := task.New(task.TypeEmailSend, p)
	if err != nil {
		n.log.Error("build email task", zap.Error(err))
		return
	}
	if err := n.q.Enqueue(ctx, t); err != nil {
		n.log.Error("enqueue email task",
			zap.String("task_id", t.ID),
			zap.Strings("to", p.To),
			zap.Error(err),
		)
		return
	}
	n.log.Debug("email task enqueued", zap.String("task_id", t.ID), zap.String("subject", p.Subject))
}
