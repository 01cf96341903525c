package store

import (
	"github.com/pkg/errors"

	"github.com/simply-kaspa/indexer-go/internal/dbtype"
)

// SelectVar reads a single vars row, grounded on
// original_source/database/src/query/select.rs's select_var. Callers
// distinguish "not found" from other errors via gorm.IsRecordNotFoundError.
func (c *Client) SelectVar(key string) (string, error) {
	var v Var
	if err := c.db.Where("`key` = ?", key).First(&v).Error; err != nil {
		return "", err
	}
	return v.Value, nil
}

// UpsertVar writes a vars row, grounded on the diesel
// on_conflict(vars::key).do_update() idiom in
// original_source/src/vars/vars.rs, realized here as MySQL's
// "ON DUPLICATE KEY UPDATE".
func (c *Client) UpsertVar(key, value string) error {
	result := c.db.Exec("INSERT INTO vars (`key`, `value`) VALUES (?, ?) ON DUPLICATE KEY UPDATE `value` = VALUES(`value`)", key, value)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "store: upsert var %q", key)
	}
	return nil
}

// SelectSubnetworks loads the full subnetwork interning table, used
// once at TransactionProcessor startup (spec.md §4.4), grounded on
// select.rs's select_subnetworks.
func (c *Client) SelectSubnetworks() ([]Subnetwork, error) {
	var subnetworks []Subnetwork
	if err := c.db.Find(&subnetworks).Error; err != nil {
		return nil, errors.Wrap(err, "store: select subnetworks")
	}
	return subnetworks, nil
}

// InsertSubnetwork interns a previously-unseen subnetwork id and
// returns its assigned integer id, grounded on insert.rs's
// insert_subnetwork ("... RETURNING id"). MySQL has no RETURNING, so
// the id is read back with a SELECT by subnetwork_id after the insert;
// that read also covers a duplicate key, so concurrent interning
// attempts converge on one id.
func (c *Client) InsertSubnetwork(subnetworkID string) (int32, error) {
	result := c.db.Exec("INSERT INTO subnetworks (subnetwork_id) VALUES (?) ON DUPLICATE KEY UPDATE subnetwork_id = subnetwork_id", subnetworkID)
	if result.Error != nil {
		return 0, errors.Wrapf(result.Error, "store: insert subnetwork %q", subnetworkID)
	}
	var row Subnetwork
	if err := c.db.Where("subnetwork_id = ?", subnetworkID).First(&row).Error; err != nil {
		return 0, errors.Wrapf(err, "store: read back subnetwork %q", subnetworkID)
	}
	return row.ID, nil
}

// SelectTxCount counts the transactions mapped to a block, grounded on
// select.rs's select_tx_count.
func (c *Client) SelectTxCount(blockHash dbtype.Hash) (int64, error) {
	var count int64
	if err := c.db.Model(&BlockTransaction{}).Where("block_hash = ?", blockHash).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "store: select tx count")
	}
	return count, nil
}

// SelectIsChainBlock reports whether a block has at least one
// transaction-acceptance row, grounded on select.rs's select_is_chain_block.
func (c *Client) SelectIsChainBlock(blockHash dbtype.Hash) (bool, error) {
	var count int64
	if err := c.db.Model(&TransactionAcceptance{}).Where("block_hash = ?", blockHash).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "store: select is chain block")
	}
	return count > 0, nil
}
