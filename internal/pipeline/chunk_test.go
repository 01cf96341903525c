package pipeline

import (
	"testing"

	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestChunkBlocksSplitsBySize(t *testing.T) {
	blocks := make([]store.Block, 5)
	chunks := chunkBlocks(blocks, 2)
	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2)
	assert.Len(t, chunks[1], 2)
	assert.Len(t, chunks[2], 1)
}

func TestChunkBlocksEmptyInput(t *testing.T) {
	assert.Nil(t, chunkBlocks(nil, 10))
}

func TestChunkBlocksClampsNonPositiveSize(t *testing.T) {
	blocks := make([]store.Block, 3)
	chunks := chunkBlocks(blocks, 0)
	require := assert.New(t)
	require.Len(chunks, 3)
	for _, c := range chunks {
		require.Len(c, 1)
	}
}

func TestChunkHashesExactMultiple(t *testing.T) {
	hashes := make([]dbtype.Hash, 4)
	chunks := chunkHashes(hashes, 2)
	assert.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 2)
	assert.Len(t, chunks[1], 2)
}

func TestChunkBlockParentsSingleChunkWhenUnderSize(t *testing.T) {
	parents := make([]store.BlockParent, 3)
	chunks := chunkBlockParents(parents, 10)
	assert.Len(t, chunks, 1)
	assert.Len(t, chunks[0], 3)
}

func TestChunkTransactions(t *testing.T) {
	rows := make([]store.Transaction, 7)
	chunks := chunkTransactions(rows, 3)
	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 3)
	assert.Len(t, chunks[2], 1)
}

func TestChunkInputsOutputsAddressTransactionsBlockTransactions(t *testing.T) {
	inputs := make([]store.TransactionInput, 5)
	assert.Len(t, chunkInputs(inputs, 4), 2)

	outputs := make([]store.TransactionOutput, 5)
	assert.Len(t, chunkOutputs(outputs, 4), 2)

	addrs := make([]store.AddressTransaction, 5)
	assert.Len(t, chunkAddressTransactions(addrs, 4), 2)

	blockTxs := make([]store.BlockTransaction, 5)
	assert.Len(t, chunkBlockTransactions(blockTxs, 4), 2)

	scriptTxs := make([]store.ScriptTransaction, 5)
	assert.Len(t, chunkScriptTransactions(scriptTxs, 4), 2)
}

func TestChunkTxIDs(t *testing.T) {
	ids := make([][]byte, 9)
	chunks := chunkTxIDs(ids, 4)
	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 4)
	assert.Len(t, chunks[2], 1)
}
