package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/simply-kaspa/indexer-go/internal/checkpoint"
	"github.com/simply-kaspa/indexer-go/internal/config"
	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/log"
	"github.com/simply-kaspa/indexer-go/internal/rpcclient"
	"github.com/simply-kaspa/indexer-go/internal/store"
)

// VirtualChainProcessor walks the node's selected-parent chain from a
// resume hash, translating accepted/removed chain blocks into
// transactions_acceptances rows, grounded on
// original_source/indexer/src/virtual_chain/process_virtual_chain.rs and
// update_transactions.rs.
type VirtualChainProcessor struct {
	pool     *rpcclient.Pool
	db       *store.Client
	cp       *checkpoint.Coordinator
	cfg      config.Config
	log      *log.Logger
	startVCP *atomic.Bool

	startHash dbtype.Hash
	synced    bool
	batchSize int
}

// NewVirtualChainProcessor constructs a VirtualChainProcessor that stays
// idle until startVCP is set by BlockPersistor.
func NewVirtualChainProcessor(pool *rpcclient.Pool, db *store.Client, cp *checkpoint.Coordinator, cfg config.Config, startVCP *atomic.Bool, startHash dbtype.Hash) *VirtualChainProcessor {
	return &VirtualChainProcessor{
		pool:      pool,
		db:        db,
		cp:        cp,
		cfg:       cfg,
		log:       log.NewModuleLogger(log.VirtualChain),
		startVCP:  startVCP,
		startHash: startHash,
		batchSize: min(int(1000*cfg.BatchScale), 7500),
	}
}

// Run walks the virtual chain until stopCh closes.
func (p *VirtualChainProcessor) Run(stopCh <-chan struct{}) {
	startTime := time.Now()
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		if !p.startVCP.Load() {
			p.log.Debug("waiting for start notification")
			if !sleepOrStop(5*time.Second, stopCh) {
				return
			}
			continue
		}

		client, err := p.pool.Acquire(context.Background())
		if err != nil {
			if !sleepOrStop(5*time.Second, stopCh) {
				return
			}
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), rpcclient.CallTimeout)
		p.log.Debug("getting virtual chain", "startHash", p.startHash.String())
		result, err := client.GetVirtualChainFromBlock(ctx, p.startHash, true)
		cancel()
		if err != nil {
			p.pool.Discard(client)
			if !sleepOrStop(5*time.Second, stopCh) {
				return
			}
			continue
		}

		addedCount := len(result.AddedChainBlockHashes)
		if len(result.AcceptedTransactionIDs) > 0 {
			lastAccepting := result.AcceptedTransactionIDs[len(result.AcceptedTransactionIDs)-1].AcceptingBlockHash
			ctx2, cancel2 := context.WithTimeout(context.Background(), rpcclient.CallTimeout)
			block, err := client.GetBlock(ctx2, lastAccepting, false)
			cancel2()
			if err != nil {
				p.pool.Discard(client)
				if !sleepOrStop(5*time.Second, stopCh) {
					return
				}
				continue
			}
			p.pool.Release(client)

			p.updateTxs(result.RemovedChainBlockHashes, result.AcceptedTransactionIDs, block.Header.Timestamp)
			p.startHash = lastAccepting
			p.cp.Notify(checkpoint.Event{Origin: checkpoint.OriginVcp, BlockHash: lastAccepting})
		} else {
			p.pool.Release(client)
		}

		if !p.synced && addedCount < 200 {
			p.log.Info("virtual chain processor synced", "elapsed", time.Since(startTime).Truncate(time.Second).String())
			p.synced = true
		}
		if p.synced {
			if !sleepOrStop(2*time.Second, stopCh) {
				return
			}
		}
	}
}

// updateTxs deletes acceptance rows for the removed chain and inserts
// rows for the newly-accepted chain, grounded on update_transactions.rs.
func (p *VirtualChainProcessor) updateTxs(removed []dbtype.Hash, accepted []rpcclient.AcceptedTransactions, lastAcceptingTime int64) {
	commitStart := time.Now()
	defer func() {
		vcpCommitLatencyGauge.Update(time.Since(commitStart).Milliseconds())
	}()

	var rowsRemoved, rowsAdded int64

	for _, chunk := range chunkHashes(removed, p.batchSize) {
		n, err := p.db.DeleteTransactionAcceptances(chunk)
		if err != nil {
			p.log.Crit("delete transaction acceptances failed", "err", err)
		}
		rowsRemoved += n
	}

	var pending []store.TransactionAcceptance
	for _, group := range accepted {
		for _, txID := range group.AcceptedTxIDs {
			pending = append(pending, store.TransactionAcceptance{TransactionID: txID, BlockHash: group.AcceptingBlockHash})
		}
		if len(pending) >= p.batchSize {
			n, err := p.db.InsertTransactionAcceptances(pending)
			if err != nil {
				p.log.Crit("insert transaction acceptances failed", "err", err)
			}
			rowsAdded += n
			pending = nil
		}
	}
	if len(pending) > 0 {
		n, err := p.db.InsertTransactionAcceptances(pending)
		if err != nil {
			p.log.Crit("insert transaction acceptances failed", "err", err)
		}
		rowsAdded += n
	}

	p.log.Info("committed chain updates", "accepted", rowsAdded, "removed", rowsRemoved, "lastAcceptingTime", lastAcceptingTime)
}
