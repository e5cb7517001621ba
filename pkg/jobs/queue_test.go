package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	q := New("test", func(ctx context.Context, task Task) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, Options{Workers: 1, MaxRetries: 5, RetryDelay: time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()
	require.NoError(t, q.Enqueue(Task{Kind: "mail"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never succeeded")
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestQueueDropsTaskAfterRetriesExhausted(t *testing.T) {
	dropped := make(chan Task, 1)
	q := New("test", func(ctx context.Context, task Task) error {
		return errors.New("smtp down")
	}, Options{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		OnDrop:     func(task Task, err error) { dropped <- task },
	})

	q.Start(context.Background())
	defer q.Stop()
	require.NoError(t, q.Enqueue(Task{Kind: "mail"}))

	select {
	case task := <-dropped:
		// Two retries after the initial attempt.
		assert.Equal(t, 3, task.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("task was never dropped")
	}
}

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := New("test", func(ctx context.Context, task Task) error { return nil }, Options{})

	err := q.Enqueue(Task{Kind: "mail"})
	require.Error(t, err)
}
