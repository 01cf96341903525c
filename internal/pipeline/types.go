// Package pipeline wires the five cooperating stages named in spec.md
// §2 — BlockFetcher, BlockProcessor, BlockPersistor, TransactionProcessor,
// TransactionPersistor — plus the VirtualChainProcessor and a supervisor
// that owns their lifecycle. Stages are connected by internal/queue's
// bounded channels so a slow consumer applies backpressure instead of
// unbounded memory growth, grounded on the block/tx channel pairs of
// original_source/indexer/src/{blocks/fetch_blocks,transactions/process_transactions}.rs.
package pipeline

import (
	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/rpcclient"
	"github.com/simply-kaspa/indexer-go/internal/store"
)

// fetchedBlock is one block as handed from the BlockFetcher to the
// BlockProcessor, grounded on fetch_blocks.rs's BlockData (transactions
// split out into a sibling queue so the two stages scale independently).
type fetchedBlock struct {
	Block  rpcclient.Block
	Synced bool
}

// fetchedTxGroup is the set of transactions belonging to one fetched
// block, queued separately from the block itself.
type fetchedTxGroup struct {
	BlockHash    dbtype.Hash
	Transactions []rpcclient.Transaction
}

// processedBlock is a mapped block ready for BlockPersistor to batch
// and commit.
type processedBlock struct {
	Row       store.Block
	Parents   []store.BlockParent
	Hash      dbtype.Hash
	Timestamp int64
	Synced    bool
}

// processedTx is a mapped transaction (and its block relation) ready
// for TransactionPersistor to batch and commit. Row is the zero value
// when the transaction id was already seen (tx_id_cache hit): only the
// block relation still needs committing, mirroring process_transactions.rs's
// "keeping block relation only" branch.
type processedTx struct {
	BlockTransaction   store.BlockTransaction
	BlockHash          dbtype.Hash
	BlockTime          int64
	IsNew              bool
	Row                store.Transaction
	Inputs             []store.TransactionInput
	Outputs            []store.TransactionOutput
	OutputAddresses    []store.AddressTransaction
	ScriptTransactions []store.ScriptTransaction
}
