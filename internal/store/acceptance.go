package store

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/simply-kaspa/indexer-go/internal/dbtype"
)

// InsertTransactionAcceptances persists a batch of chain-acceptance
// rows, grounded on
// original_source/indexer/src/virtual_chain/{add_chain_blocks,accept_transactions}.rs.
// Callers (internal/pipeline's VirtualChainProcessor) are responsible
// for chunking large batches to the configured batch size before
// calling this.
func (c *Client) InsertTransactionAcceptances(rows []TransactionAcceptance) (int64, error) {
	cols := []string{"transaction_id", "block_hash"}
	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = []interface{}{r.TransactionID, r.BlockHash}
	}
	return c.batchInsert("transactions_acceptances", cols, "transaction_id", values)
}

// DeleteTransactionAcceptances removes acceptance rows for blocks that
// left the selected parent chain (a reorg), grounded on
// original_source/indexer/src/virtual_chain/remove_chain_blocks.rs.
func (c *Client) DeleteTransactionAcceptances(blockHashes []dbtype.Hash) (int64, error) {
	if len(blockHashes) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(blockHashes)), ",")
	args := make([]interface{}, len(blockHashes))
	for i, h := range blockHashes {
		args[i] = h
	}
	result := c.db.Exec("DELETE FROM transactions_acceptances WHERE block_hash IN ("+placeholders+")", args...)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "store: delete transaction acceptances")
	}
	return result.RowsAffected, nil
}
