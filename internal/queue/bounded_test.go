package queue

import (
	"testing"
	"time"

	"github.com/simply-kaspa/indexer-go/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(capacity int) *Bounded[int] {
	return NewBounded[int]("test", capacity, log.NewModuleLogger(log.Supervisor))
}

func TestBoundedPushPopOrder(t *testing.T) {
	q := newTestQueue(4)
	stop := make(chan struct{})

	require.True(t, q.Push(1, stop))
	require.True(t, q.Push(2, stop))
	require.True(t, q.Push(3, stop))
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 4, q.Cap())

	v, ok := q.Pop(stop)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = q.Pop(stop)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestBoundedTryPopEmpty(t *testing.T) {
	q := newTestQueue(2)
	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestBoundedPushBlocksUntilConsumed(t *testing.T) {
	q := newTestQueue(1)
	stop := make(chan struct{})

	require.True(t, q.Push(1, stop))

	pushed := make(chan bool, 1)
	go func() {
		pushed <- q.Push(2, stop)
	}()

	select {
	case <-pushed:
		t.Fatal("Push should block while the queue is full")
	case <-time.After(100 * time.Millisecond):
	}

	v, ok := q.Pop(stop)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	select {
	case result := <-pushed:
		assert.True(t, result)
	case <-time.After(time.Second):
		t.Fatal("Push never unblocked after consumer drained the queue")
	}
}

func TestBoundedPushAbortsOnStop(t *testing.T) {
	q := newTestQueue(1)
	stop := make(chan struct{})
	require.True(t, q.Push(1, stop))

	done := make(chan bool, 1)
	go func() {
		done <- q.Push(2, stop)
	}()

	close(stop)
	select {
	case result := <-done:
		assert.False(t, result)
	case <-time.After(time.Second):
		t.Fatal("Push never returned after stopCh closed")
	}
}

func TestBoundedPopAbortsOnStop(t *testing.T) {
	q := newTestQueue(1)
	stop := make(chan struct{})
	close(stop)

	_, ok := q.Pop(stop)
	assert.False(t, ok)
}

func TestBoundedCloseDrainsRemainingItems(t *testing.T) {
	q := newTestQueue(2)
	stop := make(chan struct{})
	require.True(t, q.Push(1, stop))
	require.True(t, q.Push(2, stop))
	q.Close()

	v, ok := q.Pop(stop)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = q.Pop(stop)
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = q.Pop(stop)
	assert.False(t, ok)
}

func TestNewBoundedClampsNonPositiveCapacity(t *testing.T) {
	q := newTestQueue(0)
	assert.Equal(t, 1, q.Cap())
}
