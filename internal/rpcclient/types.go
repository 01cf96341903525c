// Package rpcclient models the four upstream-node RPC operations the
// indexer core consumes (spec.md §6) and a small connection pool over
// them. The wire transport (gRPC/websocket) is an external collaborator
// and is not implemented here; Client is the seam a real transport plugs
// into.
package rpcclient

import (
	"context"
	"time"

	"github.com/simply-kaspa/indexer-go/internal/dbtype"
)

// BlockHeader mirrors the node's block header fields (spec.md §3, §6).
type BlockHeader struct {
	Hash                 dbtype.Hash
	Version              int16
	ParentsByLevel       [][]dbtype.Hash // level 0 holds the materialized parents (I1)
	HashMerkleRoot       dbtype.Hash
	AcceptedIDMerkleRoot dbtype.Hash
	UTXOCommitment       dbtype.Hash
	Timestamp            int64 // ms since epoch
	Bits                 uint32
	Nonce                dbtype.VarBytes // 8-byte big-endian
	DAAScore             uint64
	BlueWork             dbtype.VarBytes // variable-width big-endian
	PruningPoint         dbtype.Hash
	BlueScore            uint64
}

// VerboseBlockData mirrors the node's verbose per-block consensus metadata.
type VerboseBlockData struct {
	Difficulty         float64
	SelectedParentHash dbtype.Hash
	MergeSetBluesHashes []dbtype.Hash
	MergeSetRedsHashes  []dbtype.Hash
	TransactionIDs      []dbtype.Hash
}

// Outpoint identifies a previous transaction output being spent.
type Outpoint struct {
	TransactionID dbtype.Hash
	Index         uint16
}

// VerboseOutputData carries node-resolved address/script info for an output.
type VerboseOutputData struct {
	ScriptPublicKeyAddress string
}

// TransactionOutput mirrors one verbose output of an RPC transaction.
type TransactionOutput struct {
	Amount          uint64
	ScriptPublicKey []byte
	Verbose         *VerboseOutputData
}

// TransactionInput mirrors one verbose input of an RPC transaction.
type TransactionInput struct {
	PreviousOutpoint Outpoint
	SignatureScript  []byte
	SigOpCount       uint8
}

// VerboseTransactionData carries node-resolved transaction metadata.
type VerboseTransactionData struct {
	TransactionID dbtype.Hash // with signature data (I1: distinct from Hash)
	Hash          dbtype.Hash // signature-independent transaction hash
	BlockHash     dbtype.Hash
}

// Transaction mirrors a verbose RPC transaction (spec.md §3).
type Transaction struct {
	SubnetworkID string
	Mass         uint64
	Payload      []byte
	Inputs       []TransactionInput
	Outputs      []TransactionOutput
	Verbose      *VerboseTransactionData
	BlockTime    int64 // ms since epoch; carried from the containing block
}

// Block is a single block as returned by GetBlocks/GetBlock, split into its
// header, verbose consensus data, and transactions (spec.md §4.1 splits
// header+verbose from the transaction vector at fetch time).
type Block struct {
	Header       BlockHeader
	Verbose      VerboseBlockData
	Transactions []Transaction
}

// GetBlocksResult is the response of GetBlocks.
type GetBlocksResult struct {
	Blocks      []Block
	BlockHashes []dbtype.Hash
}

// BlockDAGInfo is the response of GetBlockDagInfo.
type BlockDAGInfo struct {
	TipHashes          []dbtype.Hash
	PruningPointHash   dbtype.Hash
	VirtualParentHashes []dbtype.Hash
	Network            string
}

// AcceptedTransactions groups the transaction ids accepted by a single
// accepting block, as returned in a GetVirtualChainFromBlock response.
type AcceptedTransactions struct {
	AcceptingBlockHash dbtype.Hash
	AcceptedTxIDs      []dbtype.Hash
}

// VirtualChainResult is the response of GetVirtualChainFromBlock.
type VirtualChainResult struct {
	AddedChainBlockHashes   []dbtype.Hash
	RemovedChainBlockHashes []dbtype.Hash
	AcceptedTransactionIDs  []AcceptedTransactions
}

// Client is the upstream node RPC surface the core pipeline consumes
// (spec.md §6). Implementations own their own transport timeout
// (bounded at 30s per spec.md §5).
type Client interface {
	GetBlockDAGInfo(ctx context.Context) (*BlockDAGInfo, error)
	GetBlocks(ctx context.Context, lowHash dbtype.Hash, includeBlocks, includeTxs bool) (*GetBlocksResult, error)
	GetVirtualChainFromBlock(ctx context.Context, startHash dbtype.Hash, includeAcceptedTxIDs bool) (*VirtualChainResult, error)
	GetBlock(ctx context.Context, hash dbtype.Hash, includeTxs bool) (*Block, error)
	// Disconnect tears down the current connection so the next acquire
	// from the pool establishes a fresh one, per spec.md §4.1/§4.6
	// failure handling ("disconnect the current node handle").
	Disconnect() error
}

// CallTimeout bounds every RPC call, per spec.md §5 ("timeouts inside RPC
// calls are bounded (30s)").
const CallTimeout = 30 * time.Second
