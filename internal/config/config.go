// Package config resolves the CLI surface (spec.md §6) into a single
// immutable Config, including the field-selection policy that the mapper
// consults once at startup rather than per row (spec.md §9).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/simply-kaspa/indexer-go/internal/log"
)

// Feature is a gate name accepted by --disable.
type Feature string

const (
	FeatureTransactionProcessing  Feature = "transaction-processing"
	FeatureVirtualChainProcessing Feature = "virtual-chain-processing"
	FeatureResolveAddresses       Feature = "resolve-addresses"

	// Per-table gates, grounded on original_source/cli/src/cli_args.rs's
	// CliDisable variants: each skips mapping/persisting one table
	// entirely rather than just nulling a column.
	FeatureBlocksTable              Feature = "blocks-table"
	FeatureBlockParentTable         Feature = "block-parent-table"
	FeatureBlocksTransactionsTable  Feature = "blocks-transactions-table"
	FeatureTransactionsTable        Feature = "transactions-table"
	FeatureTransactionsInputsTable  Feature = "transactions-inputs-table"
	FeatureTransactionsOutputsTable Feature = "transactions-outputs-table"
	FeatureAddressesTransactionsTable Feature = "addresses-transactions-table"
	// FeatureScriptsTransactionsTable gates the raw-script twin of
	// addresses-transactions-table, populated with one row per output
	// script regardless of whether it resolves to an address.
	FeatureScriptsTransactionsTable Feature = "scripts-transactions-table"
	// FeatureVcpWaitForSync, when disabled, lets BlockPersistor count a
	// batch toward starting the VirtualChainProcessor whenever it deleted
	// no acceptance rows, without also requiring the fetcher to have
	// marked that batch synced.
	FeatureVcpWaitForSync Feature = "vcp-wait-for-sync"
)

// IgnoreCheckpointMode selects how --ignore-checkpoint overrides the
// persisted resume point.
type IgnoreCheckpointMode int

const (
	IgnoreCheckpointNone IgnoreCheckpointMode = iota
	IgnoreCheckpointHash
	IgnoreCheckpointPruningPoint
	IgnoreCheckpointVirtual
)

// FieldPolicy records, per nullable column named in spec.md §3, whether
// the mapper should populate it or emit SQL NULL. Resolved once from
// --exclude-fields and passed to the mapper at construction (spec.md §9,
// "Config-driven column inclusion").
type FieldPolicy struct {
	excluded map[string]bool
}

// All known excludable column names, grounded on spec.md §3's "fields
// individually nullable-by-config" columns.
const (
	FieldBlockHashMerkleRoot       = "block.hash_merkle_root"
	FieldBlockAcceptedIDMerkleRoot = "block.accepted_id_merkle_root"
	FieldBlockUTXOCommitment       = "block.utxo_commitment"
	FieldBlockSelectedParentHash   = "block.selected_parent_hash"
	FieldBlockBits                 = "block.bits"
	FieldBlockBlueScore            = "block.blue_score"
	FieldBlockBlueWork             = "block.blue_work"
	FieldBlockDAAScore             = "block.daa_score"
	FieldBlockNonce                = "block.nonce"
	FieldBlockPruningPoint         = "block.pruning_point"
	FieldBlockTimestamp            = "block.timestamp"
	FieldBlockVersion              = "block.version"
	FieldBlockMergeSetBluesHashes  = "block.merge_set_blues_hashes"
	FieldBlockMergeSetRedsHashes   = "block.merge_set_reds_hashes"
	FieldTransactionHash           = "tx.hash"
	FieldTransactionMass           = "tx.mass"
	FieldTransactionPayload        = "tx.payload"
	FieldTxInSignatureScript       = "tx_in.signature_script"
	FieldTxInSigOpCount            = "tx_in.sig_op_count"
	FieldTxOutScriptPublicKeyAddress = "tx_out.script_public_key_address"
)

// NewFieldPolicy resolves a FieldPolicy from the --exclude-fields flag
// value, a comma-separated list of column names.
func NewFieldPolicy(excludeFields string) FieldPolicy {
	fp := FieldPolicy{excluded: make(map[string]bool)}
	for _, f := range splitNonEmpty(excludeFields) {
		fp.excluded[strings.TrimSpace(f)] = true
	}
	return fp
}

// Includes reports whether the given column should be populated.
func (fp FieldPolicy) Includes(field string) bool {
	return !fp.excluded[field]
}

func splitNonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Config is the fully-resolved runtime configuration, assembled once in
// cmd/kaspaindexer from CLI flags (spec.md §6).
type Config struct {
	RPCURL      string
	Network     string
	DatabaseURL string
	Listen      string
	LogLevel    log.Lvl
	NoColor     bool

	BatchScale float64
	CacheTTL   time.Duration

	IgnoreCheckpoint     IgnoreCheckpointMode
	IgnoreCheckpointHash string // set when IgnoreCheckpoint == IgnoreCheckpointHash

	UpgradeDB     bool
	InitializeDB  bool

	DisabledFeatures map[Feature]bool
	FieldPolicy      FieldPolicy

	// NetBPS/NetTPSMax size the dedup caches (spec.md §4.1/§4.4):
	// capacity = throughput * cache_ttl_seconds * 2. These are
	// network-specific constants, not CLI flags, mirroring
	// original_source's settings.rs derivation from --network.
	NetBPS    float64
	NetTPSMax float64
}

// Disabled reports whether a feature gate is set via --disable.
func (c Config) Disabled(f Feature) bool {
	return c.DisabledFeatures[f]
}

// Validate checks cross-field invariants not expressible as simple flag
// defaults/ranges.
func (c Config) Validate() error {
	if c.BatchScale < 0.1 || c.BatchScale > 10 {
		return fmt.Errorf("config: --batch-scale must be within [0.1, 10], got %v", c.BatchScale)
	}
	if c.RPCURL == "" {
		return fmt.Errorf("config: --rpc-url is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: --database-url is required")
	}
	return nil
}

// NetworkParams returns the per-network throughput constants used to size
// the dedup caches, grounded on Kaspa's published block-rate tiers.
func NetworkParams(network string) (bps, tpsMax float64) {
	switch network {
	case "kaspa":
		return 10, 3000
	case "kaspa-10bps":
		return 10, 3000
	case "kaspatest", "kaspatest-10-testnet":
		return 10, 3000
	case "kaspadev":
		return 1, 300
	case "kaspasim":
		return 1, 300
	default:
		return 1, 300
	}
}

// ParseDisableList parses the --disable CLI flag's comma-separated list.
func ParseDisableList(s string) map[Feature]bool {
	out := make(map[Feature]bool)
	for _, f := range splitNonEmpty(s) {
		out[Feature(strings.TrimSpace(f))] = true
	}
	return out
}
