package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ecshop/internal/domain/task"

	"github.com/redis/go-redis/v9"
)

// pendingリストからprocessingリストへBLMOVEで移し、
// Ackでprocessingから消す。落ちたワーカーの分はRecoverで戻す
type RedisQueue struct {
	client     *redis.Client
	pending    string
	processing string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// NewRedisQueue は接続を確認してキューを返す
func NewRedisQueue(ctx context.Context, cfg RedisConfig) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisQueueWithClient(client, cfg.Key), nil
}

func NewRedisQueueWithClient(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = "ecshop:tasks"
	}
	return &RedisQueue{
		client:     client,
		pending:    key + ":pending",
		processing: key + ":processing",
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, t task.Task) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, q.pending, raw).Err(); err != nil {
		return fmt.Errorf("enqueue task %s: %w", t.ID, err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, wait time.Duration) (Delivery, bool, error) {
	raw, err := q.client.BLMove(ctx, q.pending, q.processing, "RIGHT", "LEFT", wait).Result()
	if errors.Is(err, redis.Nil) {
		return Delivery{}, false, nil
	}
	if err != nil {
		return Delivery{}, false, err
	}

	var t task.Task
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		// 読めないジョブは捨てる
		_ = q.client.LRem(ctx, q.processing, 1, raw).Err()
		return Delivery{}, false, fmt.Errorf("decode task: %w", err)
	}
	return Delivery{Task: t, raw: raw}, true, nil
}

func (q *RedisQueue) Ack(ctx context.Context, d Delivery) error {
	return q.client.LRem(ctx, q.processing, 1, d.raw).Err()
}

// Recover はprocessingに残ったジョブをpendingへ戻す。起動時に1回呼ぶ
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	n := 0
	for {
		err := q.client.LMove(ctx, q.processing, q.pending, "RIGHT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
