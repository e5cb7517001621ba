package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of deferred work, typically an outbound email.
type Task struct {
	Kind     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// HandlerFunc processes a task. A non-nil error schedules a retry.
type HandlerFunc func(context.Context, Task) error

// DropFunc receives a task that exhausted its retries, together with the
// last handler error.
type DropFunc func(Task, error)

// Options tunes the worker pool.
type Options struct {
	Workers    int
	Buffer     int
	MaxRetries int
	RetryDelay time.Duration
	OnDrop     DropFunc
	Logger     *zap.Logger
}

// Queue is an in-process task pool. A failing task is retried in place by
// the worker that picked it up, so its retries never interleave with a
// fresh enqueue of the same task.
type Queue struct {
	name string
	fn   HandlerFunc
	opts Options

	tasks   chan Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// New builds a queue around the handler. Workers do not run until Start.
func New(name string, fn HandlerFunc, opts Options) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Buffer <= 0 {
		opts.Buffer = opts.Workers * 4
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Queue{
		name:  name,
		fn:    fn,
		opts:  opts,
		tasks: make(chan Task, opts.Buffer),
	}
}

// Start launches the workers. Calling Start twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.opts.Logger.Info("queue started",
		zap.String("queue", q.name),
		zap.Int("workers", q.opts.Workers))
}

// Stop cancels the workers and waits for them to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.opts.Logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue hands a task to the pool, blocking while the buffer is full.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if task.Enqueued.IsZero() {
		task.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.tasks <- task:
		return nil
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.tasks:
			q.run(task)
		}
	}
}

// run tries the task up to MaxRetries+1 times, then surrenders it to the
// drop callback.
func (q *Queue) run(task Task) {
	var err error
	for {
		task.Attempt++
		if err = q.fn(q.ctx, task); err == nil {
			return
		}
		if task.Attempt > q.opts.MaxRetries {
			break
		}
		q.opts.Logger.Warn("task failed, retrying",
			zap.String("queue", q.name),
			zap.String("kind", task.Kind),
			zap.Int("attempt", task.Attempt),
			zap.Error(err))
		if !q.backoff() {
			break
		}
	}
	if q.opts.OnDrop != nil {
		q.opts.OnDrop(task, err)
		return
	}
	q.opts.Logger.Error("task dropped",
		zap.String("queue", q.name),
		zap.String("kind", task.Kind),
		zap.Int("attempts", task.Attempt),
		zap.Error(err))
}

// backoff waits one retry delay, returning false when the pool is shutting
// down.
func (q *Queue) backoff() bool {
	timer := time.NewTimer(q.opts.RetryDelay)
	defer timer.Stop()
	select {
	case <-q.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
