package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	done := make(chan struct{}, 2)

	q := NewQueue("test", func(ctx context.Context, job Job[int]) error {
		mu.Lock()
		seen[job.Key] = job.Payload
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(Job[int]{Key: "a", Payload: 1})
	require.NoError(t, err)
	_, err = q.Enqueue(Job[int]{Key: "b", Payload: 2})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, seen)
}

func TestQueueCoalescesPendingKeys(t *testing.T) {
	release := make(chan struct{})
	var runs int32

	q := NewQueue("test", func(ctx context.Context, job Job[string]) error {
		atomic.AddInt32(&runs, 1)
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})

	// Not started yet: enqueue is refused.
	_, err := q.Enqueue(Job[string]{Key: "k"})
	require.Error(t, err)

	q.Start(context.Background())
	defer q.Stop()

	// Occupy the only worker so later jobs stay queued.
	ok, err := q.Enqueue(Job[string]{Key: "busy"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 1 }, 2*time.Second, 5*time.Millisecond)

	ok, err = q.Enqueue(Job[string]{Key: "k"})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = q.Enqueue(Job[string]{Key: "k"})
	require.NoError(t, err)
	assert.False(t, ok)

	close(release)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestQueueRetriesFailures(t *testing.T) {
	var attempts int32
	q := NewQueue("test", func(ctx context.Context, job Job[struct{}]) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(Job[struct{}]{Key: "retry"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestQueueRejectsAfterStop(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job[int]) error { return nil }, QueueConfig{})
	q.Start(context.Background())
	q.Stop()

	_, err := q.Enqueue(Job[int]{Key: "late"})
	assert.Error(t, err)
}
