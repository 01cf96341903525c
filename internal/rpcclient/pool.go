package rpcclient

import (
	"context"
	"errors"
	"sync"

	"github.com/simply-kaspa/indexer-go/internal/log"
)

var logger = log.NewModuleLogger(log.RPCClient)

// ErrPoolClosed is returned from Acquire once the pool has been closed.
var ErrPoolClosed = errors.New("rpcclient: pool is closed")

// Dialer creates a fresh Client, used by the pool to replace a handle
// after Disconnect. A real implementation dials the node's gRPC/websocket
// endpoint; that transport is out of scope for this spec (spec.md §1).
type Dialer func(ctx context.Context) (Client, error)

// Pool is a small connection pool shared by the BlockFetcher
// and VirtualChainProcessor (spec.md §5, "RPC pool: shared among fetcher
// and VCP; size 10"), grounded on the mutex-protected peer-set bookkeeping
// idiom of node/cn/peer.go.
type Pool struct {
	dial Dialer

	mu     sync.Mutex
	idle   []Client
	size   int
	closed bool
}

// NewPool creates a Pool that keeps at most size released handles idle.
// Connections are created lazily on Acquire; the number of handles
// checked out at the same time is not limited.
func NewPool(size int, dial Dialer) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{dial: dial, size: size}
}

// Acquire returns an idle Client, or dials a new one if none is idle.
// It neither counts nor waits on handles already checked out.
func (p *Pool) Acquire(ctx context.Context) (Client, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		c := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	c, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Release returns a Client to the idle pool for reuse.
func (p *Pool) Release(c Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || len(p.idle) >= p.size {
		return
	}
	p.idle = append(p.idle, c)
}

// Discard disconnects c and does not return it to the idle pool, used on
// RPC failure per spec.md §4.1/§4.6 ("disconnect the current node handle,
// sleep ~5s, retry").
func (p *Pool) Discard(c Client) {
	if err := c.Disconnect(); err != nil {
		logger.Warn("failed to disconnect rpc client cleanly", "err", err)
	}
}

// Close disconnects every idle handle and marks the pool closed.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, c := range p.idle {
		_ = c.Disconnect()
	}
	p.idle = nil
}
