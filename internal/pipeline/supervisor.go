package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/simply-kaspa/indexer-go/internal/checkpoint"
	"github.com/simply-kaspa/indexer-go/internal/config"
	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/log"
	"github.com/simply-kaspa/indexer-go/internal/mapping"
	"github.com/simply-kaspa/indexer-go/internal/queue"
	"github.com/simply-kaspa/indexer-go/internal/rpcclient"
	"github.com/simply-kaspa/indexer-go/internal/store"
)

var logger = log.NewModuleLogger(log.Supervisor)

// Supervisor owns the lifecycle of every pipeline stage: construction,
// wiring the queues between them, starting their goroutines and
// coordinating a graceful shutdown, grounded on the
// ChainDataFetcher.Start/Stop pattern of
// datasync/chaindatafetcher/chaindata_fetcher.go.
type Supervisor struct {
	cfg config.Config
	cp  *checkpoint.Coordinator
	db  *store.Client

	blocksQueue  *queue.Bounded[fetchedBlock]
	txGroupQueue *queue.Bounded[fetchedTxGroup]
	procBlocks   *queue.Bounded[processedBlock]
	procTxs      *queue.Bounded[processedTx]

	fetcher    *BlockFetcher
	blockProc  *BlockProcessor
	blockPer   *BlockPersistor
	txProc     *TransactionProcessor
	txPer      *TransactionPersistor
	vcp        *VirtualChainProcessor

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New constructs every stage and wires their queues, grounded on
// spec.md §2's stage topology. resumeHash is the block hash to resume
// fetching and chain-walking from (the last checkpoint, an explicit
// --ignore-checkpoint hash, or the all-zero hash otherwise).
func New(cfg config.Config, pool *rpcclient.Pool, db *store.Client, cp *checkpoint.Coordinator, resumeHash dbtype.Hash) (*Supervisor, error) {
	const queueCapacity = 500

	s := &Supervisor{
		cfg:          cfg,
		cp:           cp,
		db:           db,
		blocksQueue:  queue.NewBounded[fetchedBlock]("blocks", queueCapacity, log.NewModuleLogger(log.BlockFetcher)),
		txGroupQueue: queue.NewBounded[fetchedTxGroup]("tx-groups", queueCapacity, log.NewModuleLogger(log.BlockFetcher)),
		procBlocks:   queue.NewBounded[processedBlock]("processed-blocks", queueCapacity, log.NewModuleLogger(log.BlockProcessor)),
		procTxs:      queue.NewBounded[processedTx]("processed-txs", queueCapacity, log.NewModuleLogger(log.TxProcessor)),
		stopCh:       make(chan struct{}),
	}

	mapper := mapping.New(cfg.FieldPolicy)

	s.fetcher = NewBlockFetcher(pool, s.blocksQueue, s.txGroupQueue, resumeHash, cfg.NetBPS, cfg.CacheTTL)
	s.blockProc = NewBlockProcessor(s.blocksQueue, s.procBlocks, mapper, cfg)

	var startVCP atomic.Bool
	if cfg.Disabled(config.FeatureVirtualChainProcessing) {
		startVCP.Store(true)
	}
	s.blockPer = NewBlockPersistor(s.procBlocks, db, cp, cfg, &startVCP)

	if !cfg.Disabled(config.FeatureTransactionProcessing) {
		txProc, err := NewTransactionProcessor(s.txGroupQueue, s.procTxs, db, mapper, cfg)
		if err != nil {
			return nil, err
		}
		s.txProc = txProc
		s.txPer = NewTransactionPersistor(s.procTxs, db, cp, cfg)
	}

	if !cfg.Disabled(config.FeatureVirtualChainProcessing) {
		s.vcp = NewVirtualChainProcessor(pool, db, cp, cfg, &startVCP, resumeHash)
	}

	return s, nil
}

// Start launches every enabled stage's goroutine and the checkpoint
// coordinator.
func (s *Supervisor) Start() {
	logger.Info("starting pipeline stages")
	go s.cp.Run()
	s.spawn(s.fetcher.Run)
	s.spawn(s.blockProc.Run)
	s.spawn(s.blockPer.Run)
	if s.txProc != nil {
		s.spawn(s.txProc.Run)
		s.spawn(s.txPer.Run)
	} else {
		// drain unconsumed tx groups so BlockFetcher never blocks on a
		// full queue when transaction processing is disabled.
		s.spawn(s.drainTxGroups)
	}
	if s.vcp != nil {
		s.spawn(s.vcp.Run)
	}
}

func (s *Supervisor) spawn(run func(stopCh <-chan struct{})) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		run(s.stopCh)
	}()
}

func (s *Supervisor) drainTxGroups(stopCh <-chan struct{}) {
	for {
		if _, ok := s.txGroupQueue.Pop(stopCh); !ok {
			return
		}
	}
}

// Stop signals every stage to drain and exit, waits for them, then
// stops the checkpoint coordinator. Matching ChainDataFetcher.Stop's
// close-then-wait ordering.
func (s *Supervisor) Stop() {
	logger.Info("stopping pipeline stages")
	close(s.stopCh)
	s.wg.Wait()
	s.cp.Stop()
	logger.Info("pipeline stopped")
}

// QueueLens reports each queue's current length and capacity, consumed
// by the health endpoint's /healthz handler (spec.md §7).
func (s *Supervisor) QueueLens() map[string][2]int {
	return map[string][2]int{
		"blocks":           {s.blocksQueue.Len(), s.blocksQueue.Cap()},
		"tx_groups":        {s.txGroupQueue.Len(), s.txGroupQueue.Cap()},
		"processed_blocks": {s.procBlocks.Len(), s.procBlocks.Cap()},
		"processed_txs":    {s.procTxs.Len(), s.procTxs.Cap()},
	}
}
