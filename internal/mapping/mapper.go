// Package mapping converts rpcclient's node-shaped types into store's
// row-shaped types, applying the field-exclusion policy exactly once
// per field per call (spec.md §9's "config-driven column inclusion"
// resolved once, not per row). It is grounded on
// original_source/mapping/src/mapper/{mapper,blocks,transactions}.rs.
package mapping

import (
	"github.com/simply-kaspa/indexer-go/internal/config"
	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/rpcclient"
	"github.com/simply-kaspa/indexer-go/internal/store"
)

// Mapper holds the resolved field policy for the lifetime of the
// process, constructed once at startup from --exclude-fields
// (original_source/mapping/src/mapper/mapper.rs's KaspaDbMapper).
type Mapper struct {
	policy config.FieldPolicy
}

// New builds a Mapper bound to the given field policy.
func New(policy config.FieldPolicy) *Mapper {
	return &Mapper{policy: policy}
}

// MapBlock converts a fetched block's header and verbose data into a
// store.Block row, grounded on mapper/blocks.rs's map_block. Excluded
// fields are left nil/zero so the insert serializes them as SQL NULL.
func (m *Mapper) MapBlock(b *rpcclient.Block) store.Block {
	row := store.Block{
		Hash:      b.Header.Hash,
		Nonce:     b.Header.Nonce,
		Timestamp: nil,
	}
	if m.policy.Includes(config.FieldBlockAcceptedIDMerkleRoot) {
		h := b.Header.AcceptedIDMerkleRoot
		row.AcceptedIDMerkleRoot = &h
	}
	if m.policy.Includes(config.FieldBlockMergeSetBluesHashes) {
		row.MergeSetBluesHashes = encodeHashes(b.Verbose.MergeSetBluesHashes)
	}
	if m.policy.Includes(config.FieldBlockMergeSetRedsHashes) {
		row.MergeSetRedsHashes = encodeHashes(b.Verbose.MergeSetRedsHashes)
	}
	if m.policy.Includes(config.FieldBlockSelectedParentHash) {
		h := b.Verbose.SelectedParentHash
		row.SelectedParentHash = &h
	}
	if m.policy.Includes(config.FieldBlockBits) {
		v := int64(b.Header.Bits)
		row.Bits = &v
	}
	if m.policy.Includes(config.FieldBlockBlueScore) {
		v := int64(b.Header.BlueScore)
		row.BlueScore = &v
	}
	if m.policy.Includes(config.FieldBlockBlueWork) {
		row.BlueWork = b.Header.BlueWork
	}
	if m.policy.Includes(config.FieldBlockDAAScore) {
		v := int64(b.Header.DAAScore)
		row.DAAScore = &v
	}
	if m.policy.Includes(config.FieldBlockHashMerkleRoot) {
		h := b.Header.HashMerkleRoot
		row.HashMerkleRoot = &h
	}
	if !m.policy.Includes(config.FieldBlockNonce) {
		row.Nonce = nil
	}
	if m.policy.Includes(config.FieldBlockPruningPoint) {
		h := b.Header.PruningPoint
		row.PruningPoint = &h
	}
	if m.policy.Includes(config.FieldBlockTimestamp) {
		v := b.Header.Timestamp
		row.Timestamp = &v
	}
	if m.policy.Includes(config.FieldBlockUTXOCommitment) {
		h := b.Header.UTXOCommitment
		row.UTXOCommitment = &h
	}
	if m.policy.Includes(config.FieldBlockVersion) {
		v := b.Header.Version
		row.Version = &v
	}
	return row
}

// MapBlockParents expands the materialized (level-0) parent set into
// one row per edge, grounded on blocks.rs's map_block_parents (I1:
// every parent, not just the selected one).
func (m *Mapper) MapBlockParents(b *rpcclient.Block) []store.BlockParent {
	if len(b.Header.ParentsByLevel) == 0 {
		return nil
	}
	level0 := b.Header.ParentsByLevel[0]
	rows := make([]store.BlockParent, len(level0))
	for i, parent := range level0 {
		rows[i] = store.BlockParent{BlockHash: b.Header.Hash, ParentHash: parent}
	}
	return rows
}

// MapBlockTransactionIDs returns the transaction ids belonging to a
// block, grounded on blocks.rs's map_block_transaction_ids.
func (m *Mapper) MapBlockTransactionIDs(b *rpcclient.Block) []dbtype.Hash {
	return b.Verbose.TransactionIDs
}

// MapTransaction converts one fetched transaction into a store.Transaction
// row, grounded on transactions.rs's map_transaction.
func (m *Mapper) MapTransaction(tx *rpcclient.Transaction, subnetworkKey int32) store.Transaction {
	row := store.Transaction{
		TransactionID: tx.Verbose.TransactionID,
		SubnetworkID:  int16(subnetworkKey),
		BlockTime:     tx.BlockTime,
	}
	if m.policy.Includes(config.FieldTransactionHash) {
		h := tx.Verbose.Hash
		row.Hash = &h
	}
	if m.policy.Includes(config.FieldTransactionMass) && tx.Mass != 0 {
		v := int32(tx.Mass)
		row.Mass = &v
	}
	if m.policy.Includes(config.FieldTransactionPayload) && len(tx.Payload) > 0 {
		row.Payload = dbtype.VarBytes(tx.Payload)
	}
	return row
}

// MapBlockTransaction pairs a transaction with its containing block,
// grounded on transactions.rs's map_block_transaction.
func (m *Mapper) MapBlockTransaction(tx *rpcclient.Transaction) store.BlockTransaction {
	return store.BlockTransaction{BlockHash: tx.Verbose.BlockHash, TransactionID: tx.Verbose.TransactionID}
}

// MapTransactionInputs converts a transaction's inputs, grounded on
// transactions.rs's map_transaction_inputs. It carries only the wire
// data forward: PreviousOutpointScript/Amount are left nil, and no later
// stage fills them.
func (m *Mapper) MapTransactionInputs(tx *rpcclient.Transaction) []store.TransactionInput {
	rows := make([]store.TransactionInput, len(tx.Inputs))
	for i, in := range tx.Inputs {
		row := store.TransactionInput{
			TransactionID:         tx.Verbose.TransactionID,
			Index:                 int16(i),
			PreviousOutpointHash:  in.PreviousOutpoint.TransactionID,
			PreviousOutpointIndex: int16(in.PreviousOutpoint.Index),
			BlockTime:             tx.BlockTime,
		}
		if m.policy.Includes(config.FieldTxInSignatureScript) {
			row.SignatureScript = dbtype.VarBytes(in.SignatureScript)
		}
		if m.policy.Includes(config.FieldTxInSigOpCount) {
			v := int16(in.SigOpCount)
			row.SigOpCount = &v
		}
		rows[i] = row
	}
	return rows
}

// MapTransactionOutputs converts a transaction's outputs, grounded on
// transactions.rs's map_transaction_outputs.
func (m *Mapper) MapTransactionOutputs(tx *rpcclient.Transaction) []store.TransactionOutput {
	rows := make([]store.TransactionOutput, len(tx.Outputs))
	for i, out := range tx.Outputs {
		row := store.TransactionOutput{
			TransactionID:   tx.Verbose.TransactionID,
			Index:           int16(i),
			Amount:          int64(out.Amount),
			ScriptPublicKey: dbtype.VarBytes(out.ScriptPublicKey),
			BlockTime:       tx.BlockTime,
		}
		if m.policy.Includes(config.FieldTxOutScriptPublicKeyAddress) && out.Verbose != nil {
			addr := out.Verbose.ScriptPublicKeyAddress
			row.ScriptPublicKeyAddress = &addr
		}
		rows[i] = row
	}
	return rows
}

// MapTransactionOutputsAddress builds the resolved-address index rows
// for a transaction's outputs, grounded on transactions.rs's
// map_transaction_outputs_address. Outputs whose address did not
// resolve (no Verbose data) are skipped.
func (m *Mapper) MapTransactionOutputsAddress(tx *rpcclient.Transaction) []store.AddressTransaction {
	rows := make([]store.AddressTransaction, 0, len(tx.Outputs))
	for _, out := range tx.Outputs {
		if out.Verbose == nil || out.Verbose.ScriptPublicKeyAddress == "" {
			continue
		}
		rows = append(rows, store.AddressTransaction{
			Address:       out.Verbose.ScriptPublicKeyAddress,
			TransactionID: tx.Verbose.TransactionID,
			BlockTime:     tx.BlockTime,
		})
	}
	return rows
}

// MapScriptTransactions builds the raw-script twin of
// MapTransactionOutputsAddress: one row per output, whether or not the
// output's script resolved to an address.
func (m *Mapper) MapScriptTransactions(tx *rpcclient.Transaction) []store.ScriptTransaction {
	rows := make([]store.ScriptTransaction, len(tx.Outputs))
	for i, out := range tx.Outputs {
		rows[i] = store.ScriptTransaction{
			ScriptPublicKey: dbtype.VarBytes(out.ScriptPublicKey),
			TransactionID:   tx.Verbose.TransactionID,
			BlockTime:       tx.BlockTime,
		}
	}
	return rows
}

func encodeHashes(hashes []dbtype.Hash) dbtype.VarBytes {
	if len(hashes) == 0 {
		return nil
	}
	out := make([]byte, 0, len(hashes)*dbtype.HashSize)
	for _, h := range hashes {
		out = append(out, h.Bytes()...)
	}
	return out
}
