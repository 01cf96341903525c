package store

import (
	"strings"

	"github.com/pkg/errors"
)

// batchInsert builds and executes a single
//   INSERT INTO table (cols...) VALUES (...), (...), ...
//   ON DUPLICATE KEY UPDATE <first pk col>=<first pk col>
// statement, the MySQL no-op-on-conflict idiom used throughout this
// package as the realization of original_source's "ON CONFLICT DO
// NOTHING" (Postgres has no direct MySQL equivalent; UPDATE pk=pk
// touches no data and reports the row as not-affected the same way
// DO NOTHING does). Each element of rows must have len(cols) values in
// column order. Empty rows is a no-op.
func (c *Client) batchInsert(table string, cols []string, pkCol string, rows [][]interface{}) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	placeholderRow := "(" + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES ")
	args := make([]interface{}, 0, len(rows)*len(cols))
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(placeholderRow)
		args = append(args, row...)
	}
	sb.WriteString(" ON DUPLICATE KEY UPDATE ")
	sb.WriteString(pkCol)
	sb.WriteString(" = ")
	sb.WriteString(pkCol)

	result := c.db.Exec(sb.String(), args...)
	if result.Error != nil {
		return 0, errors.Wrapf(result.Error, "store: batch insert into %s", table)
	}
	return result.RowsAffected, nil
}

// InsertBlocks persists block header rows, grounded on
// original_source/database/src/query/insert.rs's insert_blocks (15
// columns, batched VALUES, conflict-do-nothing on the hash primary key).
func (c *Client) InsertBlocks(blocks []Block) (int64, error) {
	cols := []string{
		"hash", "accepted_id_merkle_root", "merge_set_blues_hashes", "merge_set_reds_hashes",
		"selected_parent_hash", "bits", "blue_score", "blue_work", "daa_score", "hash_merkle_root",
		"nonce", "pruning_point", "timestamp", "utxo_commitment", "version",
	}
	rows := make([][]interface{}, len(blocks))
	for i, b := range blocks {
		rows[i] = []interface{}{
			b.Hash, b.AcceptedIDMerkleRoot, b.MergeSetBluesHashes, b.MergeSetRedsHashes,
			b.SelectedParentHash, b.Bits, b.BlueScore, b.BlueWork, b.DAAScore, b.HashMerkleRoot,
			b.Nonce, b.PruningPoint, b.Timestamp, b.UTXOCommitment, b.Version,
		}
	}
	return c.batchInsert("blocks", cols, "hash", rows)
}

// InsertBlockParents persists the materialized parent edges (I1),
// grounded on insert.rs's insert_block_parents.
func (c *Client) InsertBlockParents(parents []BlockParent) (int64, error) {
	cols := []string{"block_hash", "parent_hash"}
	rows := make([][]interface{}, len(parents))
	for i, p := range parents {
		rows[i] = []interface{}{p.BlockHash, p.ParentHash}
	}
	return c.batchInsert("block_parent", cols, "block_hash", rows)
}

// InsertBlockTransactions persists the block/tx mapping table, always
// called last in a persist batch per spec.md §5.
func (c *Client) InsertBlockTransactions(mappings []BlockTransaction) (int64, error) {
	cols := []string{"block_hash", "transaction_id"}
	rows := make([][]interface{}, len(mappings))
	for i, m := range mappings {
		rows[i] = []interface{}{m.BlockHash, m.TransactionID}
	}
	return c.batchInsert("blocks_transactions", cols, "block_hash", rows)
}

// InsertTransactions persists transaction rows, grounded on insert.rs's
// insert_transactions.
func (c *Client) InsertTransactions(txs []Transaction) (int64, error) {
	cols := []string{"transaction_id", "subnetwork_id", "hash", "mass", "payload", "block_time"}
	rows := make([][]interface{}, len(txs))
	for i, t := range txs {
		rows[i] = []interface{}{t.TransactionID, t.SubnetworkID, t.Hash, t.Mass, t.Payload, t.BlockTime}
	}
	return c.batchInsert("transactions", cols, "transaction_id", rows)
}

// InsertTransactionInputs persists input rows, matching the
// resolve_previous_outpoints=false branch of insert.rs's
// insert_transaction_inputs. previous_outpoint_script and
// previous_outpoint_amount are written as given on the rows; no stage of
// this binary fills them, so they are stored as NULL, and there is no
// INSERT...SELECT...LEFT JOIN form that resolves them from
// transactions_outputs.
func (c *Client) InsertTransactionInputs(inputs []TransactionInput) (int64, error) {
	cols := []string{
		"transaction_id", "index", "previous_outpoint_hash", "previous_outpoint_index",
		"signature_script", "sig_op_count", "block_time", "previous_outpoint_script", "previous_outpoint_amount",
	}
	rows := make([][]interface{}, len(inputs))
	for i, in := range inputs {
		rows[i] = []interface{}{
			in.TransactionID, in.Index, in.PreviousOutpointHash, in.PreviousOutpointIndex,
			in.SignatureScript, in.SigOpCount, in.BlockTime, in.PreviousOutpointScript, in.PreviousOutpointAmount,
		}
	}
	return c.batchInsert("transactions_inputs", cols, "transaction_id", rows)
}

// InsertTransactionOutputs persists output rows, grounded on insert.rs's
// insert_transaction_outputs. Outputs must commit before input-address
// resolution runs (spec.md §5), since inputs resolve against this table.
func (c *Client) InsertTransactionOutputs(outputs []TransactionOutput) (int64, error) {
	cols := []string{"transaction_id", "index", "amount", "script_public_key", "script_public_key_address", "block_time"}
	rows := make([][]interface{}, len(outputs))
	for i, o := range outputs {
		rows[i] = []interface{}{o.TransactionID, o.Index, o.Amount, o.ScriptPublicKey, o.ScriptPublicKeyAddress, o.BlockTime}
	}
	return c.batchInsert("transactions_outputs", cols, "transaction_id", rows)
}

// InsertAddressTransactions persists the address index rows populated
// directly from outputs, grounded on insert.rs's insert_address_transactions.
func (c *Client) InsertAddressTransactions(rows []AddressTransaction) (int64, error) {
	cols := []string{"address", "transaction_id", "block_time"}
	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = []interface{}{r.Address, r.TransactionID, r.BlockTime}
	}
	return c.batchInsert("addresses_transactions", cols, "address", values)
}

// InsertScriptTransactions persists the raw-script twin of
// InsertAddressTransactions, grounded on insert.rs's insert_script_transactions.
func (c *Client) InsertScriptTransactions(rows []ScriptTransaction) (int64, error) {
	cols := []string{"script_public_key", "transaction_id", "block_time"}
	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = []interface{}{r.ScriptPublicKey, r.TransactionID, r.BlockTime}
	}
	return c.batchInsert("scripts_transactions", cols, "script_public_key", values)
}

// InsertAddressTransactionsFromInputs resolves the address side of
// spend transactions by joining inputs against the outputs they spend,
// grounded on insert.rs's insert_address_transactions_from_inputs. It
// is restricted to the given transaction ids, the batch currently being
// persisted, mirroring the original's "WHERE i.transaction_id = ANY($1)".
func (c *Client) InsertAddressTransactionsFromInputs(transactionIDs [][]byte) (int64, error) {
	if len(transactionIDs) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(transactionIDs)), ",")
	sql := `INSERT INTO addresses_transactions (address, transaction_id, block_time)
		SELECT o.script_public_key_address, i.transaction_id, i.block_time
		FROM transactions_inputs i
		JOIN transactions_outputs o
			ON o.transaction_id = i.previous_outpoint_hash AND o.index = i.previous_outpoint_index
		WHERE i.transaction_id IN (` + placeholders + `)
		ON DUPLICATE KEY UPDATE address = address`
	args := make([]interface{}, len(transactionIDs))
	for i, id := range transactionIDs {
		args[i] = id
	}
	result := c.db.Exec(sql, args...)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "store: resolve address transactions from inputs")
	}
	return result.RowsAffected, nil
}

// InsertScriptTransactionsFromInputs is the raw-script twin of
// InsertAddressTransactionsFromInputs, grounded on insert.rs's
// insert_script_transactions_from_inputs.
func (c *Client) InsertScriptTransactionsFromInputs(transactionIDs [][]byte) (int64, error) {
	if len(transactionIDs) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(transactionIDs)), ",")
	sql := `INSERT INTO scripts_transactions (script_public_key, transaction_id, block_time)
		SELECT o.script_public_key, i.transaction_id, i.block_time
		FROM transactions_inputs i
		JOIN transactions_outputs o
			ON o.transaction_id = i.previous_outpoint_hash AND o.index = i.previous_outpoint_index
		WHERE i.transaction_id IN (` + placeholders + `)
		ON DUPLICATE KEY UPDATE script_public_key = script_public_key`
	args := make([]interface{}, len(transactionIDs))
	for i, id := range transactionIDs {
		args[i] = id
	}
	result := c.db.Exec(sql, args...)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "store: resolve script transactions from inputs")
	}
	return result.RowsAffected, nil
}
