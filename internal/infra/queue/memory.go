package queue

import (
	"context"
	"sync"
	"time"

	"ecshop/internal/domain/task"
)

// 開発・テスト用。プロセス内のチャネル
type MemoryQueue struct {
	ch     chan task.Task
	mu     sync.RWMutex
	closed bool
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1024
	}
	return &MemoryQueue{ch: make(chan task.Task, size)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, t task.Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.ch <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, wait time.Duration) (Delivery, bool, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case t, ok := <-q.ch:
		if !ok {
			return Delivery{}, false, ErrClosed
		}
		return Delivery{Task: t}, true, nil
	case <-timer.C:
		return Delivery{}, false, nil
	case <-ctx.Done():
		return Delivery{}, false, ctx.Err()
	}
}

func (q *MemoryQueue) Ack(ctx context.Context, d Delivery) error {
	return nil
}

// 積まれている件数
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}

func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
