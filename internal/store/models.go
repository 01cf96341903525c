// Package store is the relational persistence layer (spec.md §3, §6),
// built on jinzhu/gorm over go-sql-driver/mysql. Every table maps the
// column set of original_source/database/src/models/*.rs; inserts use
// batched "INSERT ... ON DUPLICATE KEY UPDATE pk=pk" statements as the
// MySQL realization of the original's "ON CONFLICT DO NOTHING" (gorm
// has no native upsert-ignore for MySQL, so the client issues raw SQL
// built the same way insert.rs builds its VALUES lists).
package store

import "github.com/simply-kaspa/indexer-go/internal/dbtype"

// Block mirrors database/src/models/block.rs. Nullable fields are
// pointers so a nil value serializes to SQL NULL when a field is
// excluded via --exclude-fields (spec.md §9).
type Block struct {
	Hash                 dbtype.Hash `gorm:"primary_key;column:hash"`
	AcceptedIDMerkleRoot *dbtype.Hash
	MergeSetBluesHashes  dbtype.VarBytes // concatenated 32-byte hashes, see mapping's encodeHashes
	MergeSetRedsHashes   dbtype.VarBytes
	SelectedParentHash   *dbtype.Hash
	Bits                 *int64
	BlueScore            *int64
	BlueWork             dbtype.VarBytes
	DAAScore             *int64
	HashMerkleRoot       *dbtype.Hash
	Nonce                dbtype.VarBytes
	PruningPoint         *dbtype.Hash
	Timestamp            *int64
	UTXOCommitment       *dbtype.Hash
	Version              *int16
}

func (Block) TableName() string { return "blocks" }

// BlockParent mirrors database/src/models/block_parent.rs (I1: every
// materialized parent edge, not just the selected parent).
type BlockParent struct {
	BlockHash  dbtype.Hash `gorm:"primary_key;column:block_hash"`
	ParentHash dbtype.Hash `gorm:"primary_key;column:parent_hash"`
}

func (BlockParent) TableName() string { return "block_parent" }

// BlockTransaction mirrors database/src/models/block_transaction.rs.
// Per spec.md §5, this table is always committed last within a batch so
// its presence at restart implies the referenced block and transaction
// rows are already durable.
type BlockTransaction struct {
	BlockHash     dbtype.Hash `gorm:"primary_key;column:block_hash"`
	TransactionID dbtype.Hash `gorm:"primary_key;column:transaction_id"`
}

func (BlockTransaction) TableName() string { return "blocks_transactions" }

// Transaction mirrors database/src/models/transaction.rs.
type Transaction struct {
	TransactionID dbtype.Hash `gorm:"primary_key;column:transaction_id"`
	SubnetworkID  int16
	Hash          *dbtype.Hash
	Mass          *int32 // nil when the node reports zero compute mass
	Payload       dbtype.VarBytes
	BlockTime     int64
}

func (Transaction) TableName() string { return "transactions" }

// TransactionInput mirrors database/src/models/transaction_input.rs.
// PreviousOutpointScript/Amount are not populated by this binary, so
// they are stored as NULL.
type TransactionInput struct {
	TransactionID          dbtype.Hash `gorm:"primary_key;column:transaction_id"`
	Index                  int16       `gorm:"primary_key;column:index"`
	PreviousOutpointHash   dbtype.Hash
	PreviousOutpointIndex  int16
	SignatureScript        dbtype.VarBytes
	SigOpCount             *int16
	BlockTime              int64
	PreviousOutpointScript dbtype.VarBytes
	PreviousOutpointAmount *int64
}

func (TransactionInput) TableName() string { return "transactions_inputs" }

// TransactionOutput mirrors database/src/models/transaction_output.rs.
type TransactionOutput struct {
	TransactionID          dbtype.Hash `gorm:"primary_key;column:transaction_id"`
	Index                  int16       `gorm:"primary_key;column:index"`
	Amount                 int64
	ScriptPublicKey        dbtype.VarBytes
	ScriptPublicKeyAddress *string
	BlockTime              int64
}

func (TransactionOutput) TableName() string { return "transactions_outputs" }

// AddressTransaction mirrors database/src/models/address_transaction.rs,
// the resolved-address index populated from both outputs directly and
// inputs via a previous-outpoint join (spec.md §4.4).
type AddressTransaction struct {
	Address       string      `gorm:"primary_key;column:address"`
	TransactionID dbtype.Hash `gorm:"primary_key;column:transaction_id"`
	BlockTime     int64
}

func (AddressTransaction) TableName() string { return "addresses_transactions" }

// ScriptTransaction mirrors database/src/models/script_transaction.rs,
// the raw-script twin of AddressTransaction, populated for every output
// script whether or not it resolves to an address.
type ScriptTransaction struct {
	ScriptPublicKey dbtype.VarBytes `gorm:"primary_key;column:script_public_key"`
	TransactionID   dbtype.Hash     `gorm:"primary_key;column:transaction_id"`
	BlockTime       int64
}

func (ScriptTransaction) TableName() string { return "scripts_transactions" }

// TransactionAcceptance mirrors database/src/models/transaction_acceptance.rs.
// Each row maps an accepted transaction id to its accepting block hash.
type TransactionAcceptance struct {
	TransactionID dbtype.Hash `gorm:"primary_key;column:transaction_id"`
	BlockHash     dbtype.Hash
}

func (TransactionAcceptance) TableName() string { return "transactions_acceptances" }

// Subnetwork mirrors database/src/models/subnetwork.rs, interned once
// per process at TransactionProcessor startup (spec.md §4.4).
type Subnetwork struct {
	ID           int32 `gorm:"primary_key;column:id"`
	SubnetworkID string
}

func (Subnetwork) TableName() string { return "subnetworks" }

// Var mirrors database/src/models/var.rs, the key/value table backing
// schema_version and the checkpoint protocol (spec.md §4.5).
type Var struct {
	Key   string `gorm:"primary_key;column:key"`
	Value string
}

func (Var) TableName() string { return "vars" }
