package flux

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[string]()
	for _, s := range []string{"A", "B", "C"} {
		require.True(t, q.Enqueue(s))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestQueue_DequeueBlocksUntilAvailable(t *testing.T) {
	q := NewQueue[int]()

	var wg sync.WaitGroup
	wg.Add(1)
	var got int
	go func() {
		defer wg.Done()
		v, err := q.Dequeue(context.Background())
		assert.NoError(t, err)
		got = v
	}()

	time.Sleep(10 * time.Millisecond)
	q.Enqueue(42)
	wg.Wait()
	assert.Equal(t, 42, got)
}

func TestQueue_DequeueHonorsContext(t *testing.T) {
	q := NewQueue[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue[int]()
	q.Enqueue(1)
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(2), "enqueue after close should fail")

	v, err := q.Dequeue(context.Background())
	require.NoError(t, err, "items queued before close are still delivered")
	assert.Equal(t, 1, v)

	_, err = q.Dequeue(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
}
