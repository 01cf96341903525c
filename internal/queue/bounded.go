// Package queue implements the bounded FIFO queues that connect the
// pipeline stages (spec.md §2, §5). A full queue applies backpressure: a
// producer blocks and emits a periodic warning rather than dropping data,
// matching the blocks_queue_space/txs_queue_space loops in
// original_source/indexer/src/blocks/fetch_blocks.rs.
package queue

import (
	"time"

	"github.com/simply-kaspa/indexer-go/internal/log"
)

const warnInterval = 30 * time.Second

// Bounded is a capacity-bounded FIFO queue of items of type T.
type Bounded[T any] struct {
	name string
	ch   chan T
	log  *log.Logger
}

// NewBounded creates a Bounded queue with the given capacity. name is used
// only in backpressure warning log lines.
func NewBounded[T any](name string, capacity int, logger *log.Logger) *Bounded[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Bounded[T]{
		name: name,
		ch:   make(chan T, capacity),
		log:  logger,
	}
}

// Push enqueues item, blocking while the queue is full. stopCh allows the
// caller to abort the wait on shutdown (spec.md §4.9, run-flag drains
// in-flight batches but must not deadlock forever against a stopped
// consumer). It warns at most once every 30s while blocked, per spec.md.
func (q *Bounded[T]) Push(item T, stopCh <-chan struct{}) bool {
	select {
	case q.ch <- item:
		return true
	default:
	}

	lastWarn := time.Now()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case q.ch <- item:
			return true
		case <-stopCh:
			return false
		case <-ticker.C:
			if time.Since(lastWarn) >= warnInterval {
				q.log.Warn("queue is full, producer is backpressured", "queue", q.name, "capacity", cap(q.ch))
				lastWarn = time.Now()
			}
		}
	}
}

// TryPop returns the next item without blocking, or ok=false if the queue
// is currently empty.
func (q *Bounded[T]) TryPop() (item T, ok bool) {
	select {
	case item, ok = <-q.ch:
		return item, ok
	default:
		return item, false
	}
}

// Pop blocks until an item is available or stopCh fires.
func (q *Bounded[T]) Pop(stopCh <-chan struct{}) (item T, ok bool) {
	select {
	case item, ok = <-q.ch:
		return item, ok
	case <-stopCh:
		return item, false
	}
}

// Len returns the number of items currently queued, used by the health
// endpoint to report queue utilization (spec.md §7).
func (q *Bounded[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue's configured capacity.
func (q *Bounded[T]) Cap() int {
	return cap(q.ch)
}

// Close closes the underlying channel so range-based consumers terminate
// once drained. Only the owning producer may call Close.
func (q *Bounded[T]) Close() {
	close(q.ch)
}
