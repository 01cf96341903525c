package rpcclient

import (
	"context"
	"errors"
	"testing"

	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	id          int
	disconnects int
}

func (f *fakeClient) GetBlockDAGInfo(ctx context.Context) (*BlockDAGInfo, error) { return nil, nil }
func (f *fakeClient) GetBlocks(ctx context.Context, lowHash dbtype.Hash, includeBlocks, includeTxs bool) (*GetBlocksResult, error) {
	return nil, nil
}
func (f *fakeClient) GetVirtualChainFromBlock(ctx context.Context, startHash dbtype.Hash, includeAcceptedTxIDs bool) (*VirtualChainResult, error) {
	return nil, nil
}
func (f *fakeClient) GetBlock(ctx context.Context, hash dbtype.Hash, includeTxs bool) (*Block, error) {
	return nil, nil
}
func (f *fakeClient) Disconnect() error {
	f.disconnects++
	return nil
}

func TestPoolAcquireDialsWhenIdleEmpty(t *testing.T) {
	dialed := 0
	pool := NewPool(2, func(ctx context.Context) (Client, error) {
		dialed++
		return &fakeClient{id: dialed}, nil
	})

	c, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dialed)
	assert.Equal(t, 1, c.(*fakeClient).id)
}

func TestPoolReleaseReusesIdleClient(t *testing.T) {
	dialed := 0
	pool := NewPool(2, func(ctx context.Context) (Client, error) {
		dialed++
		return &fakeClient{id: dialed}, nil
	})

	c1, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	pool.Release(c1)

	c2, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dialed, "second acquire should reuse the released client, not dial again")
	assert.Same(t, c1, c2)
}

func TestPoolReleaseDropsClientBeyondSize(t *testing.T) {
	pool := NewPool(1, func(ctx context.Context) (Client, error) {
		return &fakeClient{}, nil
	})
	c1 := &fakeClient{id: 1}
	c2 := &fakeClient{id: 2}
	pool.Release(c1)
	pool.Release(c2)

	c, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, c.(*fakeClient).id)
}

func TestPoolDiscardDisconnects(t *testing.T) {
	pool := NewPool(1, nil)
	c := &fakeClient{}
	pool.Discard(c)
	assert.Equal(t, 1, c.disconnects)
}

func TestPoolCloseDisconnectsIdleAndRejectsAcquire(t *testing.T) {
	pool := NewPool(2, func(ctx context.Context) (Client, error) {
		return nil, errors.New("should not dial after close")
	})
	c1 := &fakeClient{}
	pool.Release(c1)

	pool.Close()
	assert.Equal(t, 1, c1.disconnects)

	_, err := pool.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPoolAcquireDialError(t *testing.T) {
	wantErr := errors.New("dial failed")
	pool := NewPool(1, func(ctx context.Context) (Client, error) {
		return nil, wantErr
	})
	_, err := pool.Acquire(context.Background())
	assert.ErrorIs(t, err, wantErr)
}

func TestNewPoolClampsNonPositiveSize(t *testing.T) {
	pool := NewPool(0, nil)
	assert.Equal(t, 1, pool.size)
}
