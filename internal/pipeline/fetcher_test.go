package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/log"
	"github.com/simply-kaspa/indexer-go/internal/queue"
	"github.com/simply-kaspa/indexer-go/internal/rpcclient"
	"github.com/simply-kaspa/indexer-go/internal/rpcclient/rpcclientmock"
)

func hashB(n byte) dbtype.Hash {
	var h dbtype.Hash
	h[0] = n
	return h
}

func TestBlockFetcherPushesNewBlocksAndTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mock := rpcclientmock.NewMockClient(ctrl)
	first := &rpcclient.GetBlocksResult{
		Blocks: []rpcclient.Block{
			{Header: rpcclient.BlockHeader{Hash: hashB(1), Timestamp: 1000}},
			{Header: rpcclient.BlockHeader{Hash: hashB(2), Timestamp: 2000}, Transactions: []rpcclient.Transaction{{}}},
		},
	}
	mock.EXPECT().GetBlocks(gomock.Any(), gomock.Any(), true, true).Return(first, nil).MinTimes(1)
	// Fewer than 100 blocks while not yet synced triggers a tip-hash check.
	mock.EXPECT().GetBlockDAGInfo(gomock.Any()).Return(&rpcclient.BlockDAGInfo{}, nil).AnyTimes()

	pool := rpcclient.NewPool(1, func(ctx context.Context) (rpcclient.Client, error) {
		return mock, nil
	})

	blocksOut := queue.NewBounded[fetchedBlock]("blocks", 10, log.NewModuleLogger(log.BlockFetcher))
	txsOut := queue.NewBounded[fetchedTxGroup]("txs", 10, log.NewModuleLogger(log.BlockFetcher))
	fetcher := NewBlockFetcher(pool, blocksOut, txsOut, dbtype.Hash{}, 10, time.Minute)

	stopCh := make(chan struct{})
	go fetcher.Run(stopCh)

	b1, ok := blocksOut.Pop(stopCh)
	require.True(t, ok)
	assert.Equal(t, hashB(1), b1.Block.Header.Hash)

	b2, ok := blocksOut.Pop(stopCh)
	require.True(t, ok)
	assert.Equal(t, hashB(2), b2.Block.Header.Hash)

	g1, ok := txsOut.Pop(stopCh)
	require.True(t, ok)
	assert.Equal(t, hashB(1), g1.BlockHash)

	close(stopCh)
}
