package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ecshop/internal/domain/task"
	"ecshop/internal/infra/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func runPool(t *testing.T, p *Pool) (stop func()) {
	t.Helper()
	p.SetPollWait(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Run(ctx)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

func enqueue(t *testing.T, q queue.Queue, typ task.Type) {
	t.Helper()
	tk, err := task.New(typ, task.EmailPayload{Subject: "s", To: []string{"a@example.com"}})
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(context.Background(), tk))
}

func TestPool_ProcessesTasks(t *testing.T) {
	q := queue.NewMemoryQueue(16)
	p := NewPool(q, zaptest.NewLogger(t), 2, 3)

	var done atomic.Int32
	p.Handle(task.TypeEmailSend, func(ctx context.Context, tk task.Task) error {
		done.Add(1)
		return nil
	})
	stop := runPool(t, p)
	defer stop()

	for i := 0; i < 5; i++ {
		enqueue(t, q, task.TypeEmailSend)
	}
	assert.Eventually(t, func() bool { return done.Load() == 5 }, 2*time.Second, 10*time.Millisecond)
}

func TestPool_RetriesUntilMaxAttempts(t *testing.T) {
	q := queue.NewMemoryQueue(16)
	p := NewPool(q, zaptest.NewLogger(t), 1, 3)

	var calls atomic.Int32
	attempts := make(chan int, 8)
	p.Handle(task.TypeEmailSend, func(ctx context.Context, tk task.Task) error {
		calls.Add(1)
		attempts <- tk.Attempt
		return errors.New("smtp down")
	})
	stop := runPool(t, p)

	enqueue(t, q, task.TypeEmailSend)
	assert.Eventually(t, func() bool { return calls.Load() == 3 }, 2*time.Second, 10*time.Millisecond)

	// 上限を超えたら積み直さない
	time.Sleep(50 * time.Millisecond)
	stop()
	assert.Equal(t, int32(3), calls.Load())
	assert.Zero(t, q.Len())

	close(attempts)
	var got []int
	for a := range attempts {
		got = append(got, a)
	}
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestPool_RecoversFromPanic(t *testing.T) {
	q := queue.NewMemoryQueue(16)
	p := NewPool(q, zaptest.NewLogger(t), 1, 2)

	var calls atomic.Int32
	p.Handle(task.TypeEmailSend, func(ctx context.Context, tk task.Task) error {
		if calls.Add(1) == 1 {
			panic("boom")
		}
		return nil
	})
	stop := runPool(t, p)
	defer stop()

	enqueue(t, q, task.TypeEmailSend)
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestPool_DropsUnknownTaskType(t *testing.T) {
	q := queue.NewMemoryQueue(16)
	p := NewPool(q, zaptest.NewLogger(t), 1, 3)

	var calls atomic.Int32
	p.Handle(task.TypeEmailSend, func(ctx context.Context, tk task.Task) error {
		calls.Add(1)
		return nil
	})
	stop := runPool(t, p)
	defer stop()

	enqueue(t, q, task.TypeCatalogImport)
	enqueue(t, q, task.TypeEmailSend)
	assert.Eventually(t, func() bool { return calls.Load() == 1 && q.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPool_StopsWhenQueueClosed(t *testing.T) {
	q := queue.NewMemoryQueue(1)
	p := NewPool(q, zaptest.NewLogger(t), 2, 1)
	p.SetPollWait(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()
	q.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop")
	}
}
