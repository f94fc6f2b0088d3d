// Package worker はキューからジョブを取り出して処理する。
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ecshop/internal/domain/task"
	"ecshop/internal/infra/queue"

	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, t task.Task) error

// Pool はN個のgoroutineでジョブを処理する。
// 失敗したジョブはattemptを増やして積み直し、上限を超えたら捨ててログに残す
type Pool struct {
	q           queue.Queue
	handlers    map[task.Type]HandlerFunc
	concurrency int
	maxAttempts int
	pollWait    time.Duration
	taskTimeout time.Duration
	log         *zap.Logger
}

func NewPool(q queue.Queue, log *zap.Logger, concurrency, maxAttempts int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Pool{
		q:           q,
		handlers:    map[task.Type]HandlerFunc{},
		concurrency: concurrency,
		maxAttempts: maxAttempts,
		pollWait:    time.Second,
		taskTimeout: 10 * time.Minute,
		log:         log.Named("worker"),
	}
}

// Handle はジョブ種別ごとの処理を登録する。Runの前に呼ぶ
func (p *Pool) Handle(t task.Type, h HandlerFunc) {
	p.handlers[t] = h
}

func (p *Pool) SetPollWait(d time.Duration) {
	p.pollWait = d
}

// Run はctxがキャンセルされるまで処理する。処理中のジョブは最後まで実行する
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.loop(ctx, id)
		}(i)
	}
	p.log.Info("worker pool started", zap.Int("concurrency", p.concurrency))
	wg.Wait()
	p.log.Info("worker pool stopped")
}

func (p *Pool) loop(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			return
		}
		d, ok, err := p.q.Dequeue(ctx, p.pollWait)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, queue.ErrClosed) {
				return
			}
			p.log.Error("dequeue", zap.Int("worker", id), zap.Error(err))
			sleep(ctx, time.Second)
			continue
		}
		if !ok {
			continue
		}
		p.process(ctx, d)
	}
}

// シャットダウン中でもジョブは中断しない
func (p *Pool) process(ctx context.Context, d queue.Delivery) {
	base := context.WithoutCancel(ctx)
	t := d.Task
	fields := []zap.Field{
		zap.String("task_id", t.ID),
		zap.String("type", string(t.Type)),
		zap.Int("attempt", t.Attempt+1),
	}

	defer func() {
		if err := p.q.Ack(base, d); err != nil {
			p.log.Error("ack", append(fields, zap.Error(err))...)
		}
	}()

	h, ok := p.handlers[t.Type]
	if !ok {
		p.log.Error("no handler for task", fields...)
		return
	}

	start := time.Now()
	err := p.call(base, h, t)
	if err == nil {
		p.log.Info("task done", append(fields, zap.Duration("elapsed", time.Since(start)))...)
		return
	}

	if t.Attempt+1 >= p.maxAttempts {
		p.log.Error("task failed permanently", append(fields, zap.Error(err))...)
		return
	}

	retry := t
	retry.Attempt++
	if qerr := p.q.Enqueue(base, retry); qerr != nil {
		p.log.Error("requeue task", append(fields, zap.Error(qerr))...)
		return
	}
	p.log.Warn("task failed, requeued", append(fields, zap.Error(err))...)
}

func (p *Pool) call(ctx context.Context, h HandlerFunc, t task.Task) (err error) {
	ctx, cancel := context.WithTimeout(ctx, p.taskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ctx, t)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
