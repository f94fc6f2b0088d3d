// Package queue はバックグラウンドジョブのキュー（Redis / インメモリ）。
// 配送は at-least-once。Ackされるまでジョブは消えない
package queue

import (
	"context"
	"errors"
	"time"

	"ecshop/internal/domain/task"
)

var ErrClosed = errors.New("queue closed")

// 取り出した1件。Ackに渡す
type Delivery struct {
	Task task.Task
	raw  string
}

type Queue interface {
	Enqueue(ctx context.Context, t task.Task) error
	// waitの間に何も来なければ ok=false
	Dequeue(ctx context.Context, wait time.Duration) (d Delivery, ok bool, err error)
	Ack(ctx context.Context, d Delivery) error
}
