package pipeline

import (
	"fmt"
	"strings"

	"github.com/simply-kaspa/indexer-go/internal/config"
	"github.com/simply-kaspa/indexer-go/internal/dedup"
	"github.com/simply-kaspa/indexer-go/internal/log"
	"github.com/simply-kaspa/indexer-go/internal/mapping"
	"github.com/simply-kaspa/indexer-go/internal/queue"
	"github.com/simply-kaspa/indexer-go/internal/rpcclient"
	"github.com/simply-kaspa/indexer-go/internal/store"
)

// TransactionProcessor interns subnetworks, dedups already-seen
// transaction ids, and maps each fetched transaction into store rows,
// grounded on the per-transaction half of
// original_source/indexer/src/transactions/process_transactions.rs
// (the batching/commit half is TransactionPersistor).
type TransactionProcessor struct {
	in     *queue.Bounded[fetchedTxGroup]
	out    *queue.Bounded[processedTx]
	db     *store.Client
	mapper *mapping.Mapper
	cfg    config.Config
	log    *log.Logger

	dedupCache    *dedup.TTLCache
	subnetworks   map[string]int32
	addrValidated bool
}

// NewTransactionProcessor constructs a TransactionProcessor, preloading
// the subnetwork interning table once (spec.md §4.4).
func NewTransactionProcessor(in *queue.Bounded[fetchedTxGroup], out *queue.Bounded[processedTx], db *store.Client, mapper *mapping.Mapper, cfg config.Config) (*TransactionProcessor, error) {
	p := &TransactionProcessor{
		in:          in,
		out:         out,
		db:          db,
		mapper:      mapper,
		cfg:         cfg,
		log:         log.NewModuleLogger(log.TxProcessor),
		subnetworks: make(map[string]int32),
	}
	capacity := int(cfg.NetTPSMax * cfg.CacheTTL.Seconds() * 2)
	if capacity < 1 {
		capacity = 1
	}
	p.dedupCache = dedup.New(cfg.CacheTTL, capacity)

	rows, err := db.SelectSubnetworks()
	if err != nil {
		return nil, fmt.Errorf("pipeline: select subnetworks: %w", err)
	}
	for _, r := range rows {
		p.subnetworks[r.SubnetworkID] = r.ID
	}
	p.log.Info("loaded known subnetworks", "count", len(p.subnetworks))
	return p, nil
}

// Run maps transactions until stopCh closes.
func (p *TransactionProcessor) Run(stopCh <-chan struct{}) {
	for {
		group, ok := p.in.Pop(stopCh)
		if !ok {
			return
		}
		for i := range group.Transactions {
			tx := &group.Transactions[i]
			if !p.processOne(tx, stopCh) {
				return
			}
		}
	}
}

func (p *TransactionProcessor) processOne(tx *rpcclient.Transaction, stopCh <-chan struct{}) bool {
	subnetworkKey, err := p.internSubnetwork(tx.SubnetworkID)
	if err != nil {
		p.log.Crit("insert subnetwork failed", "subnetworkID", tx.SubnetworkID, "err", err)
	}

	if !p.addrValidated {
		p.validateAddress(tx)
		p.addrValidated = true
	}

	txID := tx.Verbose.TransactionID
	out := processedTx{
		BlockTransaction: p.mapper.MapBlockTransaction(tx),
		BlockHash:        tx.Verbose.BlockHash,
		BlockTime:        tx.BlockTime,
	}
	if p.dedupCache.Contains(txID) {
		p.log.Debug("known transaction id, keeping block relation only", "txID", txID.String())
	} else {
		out.IsNew = true
		out.Row = p.mapper.MapTransaction(tx, subnetworkKey)
		if !p.cfg.Disabled(config.FeatureTransactionsInputsTable) {
			out.Inputs = p.mapper.MapTransactionInputs(tx)
		}
		if !p.cfg.Disabled(config.FeatureTransactionsOutputsTable) {
			out.Outputs = p.mapper.MapTransactionOutputs(tx)
		}
		if !p.cfg.Disabled(config.FeatureResolveAddresses) && !p.cfg.Disabled(config.FeatureAddressesTransactionsTable) {
			out.OutputAddresses = p.mapper.MapTransactionOutputsAddress(tx)
		}
		if !p.cfg.Disabled(config.FeatureScriptsTransactionsTable) {
			out.ScriptTransactions = p.mapper.MapScriptTransactions(tx)
		}
		p.dedupCache.Insert(txID)
	}
	return p.out.Push(out, stopCh)
}

func (p *TransactionProcessor) internSubnetwork(subnetworkID string) (int32, error) {
	if key, ok := p.subnetworks[subnetworkID]; ok {
		return key, nil
	}
	key, err := p.db.InsertSubnetwork(subnetworkID)
	if err != nil {
		return 0, err
	}
	p.subnetworks[subnetworkID] = key
	p.log.Info("committed new subnetwork", "id", key, "subnetworkID", subnetworkID)
	return key, nil
}

// validateAddress checks the address prefix of the first resolvable
// output of the first transaction processed against the expected
// network, grounded on process_transactions.rs's validate_address. A
// mismatch indicates the indexer is pointed at the wrong node/network
// and is fatal.
func (p *TransactionProcessor) validateAddress(tx *rpcclient.Transaction) {
	addr := ""
	for _, out := range tx.Outputs {
		if out.Verbose != nil && out.Verbose.ScriptPublicKeyAddress != "" {
			addr = out.Verbose.ScriptPublicKeyAddress
			break
		}
	}
	if addr == "" {
		return
	}
	prefix := "kaspa:"
	for _, n := range []string{"kaspatest", "kaspadev", "kaspasim"} {
		if strings.HasPrefix(p.cfg.Network, n) {
			prefix = n + ":"
		}
	}
	if !strings.HasPrefix(addr, prefix) {
		p.log.Crit("unexpected address prefix", "address", addr, "expected", prefix)
	}
}
