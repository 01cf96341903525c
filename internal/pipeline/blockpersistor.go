package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/simply-kaspa/indexer-go/internal/checkpoint"
	"github.com/simply-kaspa/indexer-go/internal/config"
	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/log"
	"github.com/simply-kaspa/indexer-go/internal/queue"
	"github.com/simply-kaspa/indexer-go/internal/store"
)

// noopDeletesBeforeVCP is the number of consecutive commit cycles with
// zero transaction-acceptance rows deleted that convinces BlockPersistor
// the backlog of stale acceptance rows (from a prior, now-superseded
// chain) has been fully cleared, so it is safe to let
// VirtualChainProcessor start writing new ones (spec.md §4.2).
const noopDeletesBeforeVCP = 10

// BlockPersistor batches mapped blocks and commits them, grounded on
// the batching/commit half of
// original_source/indexer/src/blocks/process_blocks.rs.
type BlockPersistor struct {
	in     *queue.Bounded[processedBlock]
	db     *store.Client
	cp     *checkpoint.Coordinator
	cfg    config.Config
	log    *log.Logger
	startVCP *atomic.Bool

	batchSize int
}

// NewBlockPersistor constructs a BlockPersistor. startVCP is flipped
// once this stage has drained the acceptance-row backlog, the signal
// VirtualChainProcessor waits on before issuing its first RPC call.
func NewBlockPersistor(in *queue.Bounded[processedBlock], db *store.Client, cp *checkpoint.Coordinator, cfg config.Config, startVCP *atomic.Bool) *BlockPersistor {
	return &BlockPersistor{
		in:        in,
		db:        db,
		cp:        cp,
		cfg:       cfg,
		log:       log.NewModuleLogger(log.BlockPersistor),
		startVCP:  startVCP,
		batchSize: int(800 * cfg.BatchScale),
	}
}

// Run accumulates and commits batches until stopCh closes and the
// queue has drained.
func (p *BlockPersistor) Run(stopCh <-chan struct{}) {
	vcpStarted := p.cfg.Disabled(config.FeatureVirtualChainProcessing)
	noopDeleteCount := 0
	lastCommit := time.Now()

	var blocks []store.Block
	var parents []store.BlockParent
	var batch []processedBlock

	flush := func() {
		if len(batch) == 0 {
			return
		}
		commitStart := time.Now()
		blocksInserted, parentsInserted := p.commitBlocks(blocks, parents)
		blockCommitLatencyGauge.Update(time.Since(commitStart).Milliseconds())
		blockCommitRowsGauge.Update(blocksInserted + parentsInserted)

		if !vcpStarted && !p.cfg.Disabled(config.FeatureVirtualChainProcessing) {
			hashes := make([]dbtype.Hash, len(batch))
			for i, b := range batch {
				hashes[i] = b.Hash
			}
			deleted := p.deleteAcceptances(hashes)
			waitForSync := !p.cfg.Disabled(config.FeatureVcpWaitForSync)
			lastSynced := batch[len(batch)-1].Synced
			if (!waitForSync || lastSynced) && deleted == 0 {
				noopDeleteCount++
			} else {
				noopDeleteCount = 0
			}
			p.log.Info("committed blocks", "blocks", blocksInserted, "parents", parentsInserted, "acceptancesCleared", deleted)
			if noopDeleteCount >= noopDeletesBeforeVCP {
				p.log.Info("notifying virtual chain processor")
				p.startVCP.Store(true)
				vcpStarted = true
			}
		} else if blocksInserted > 0 || parentsInserted > 0 {
			p.log.Info("committed blocks", "blocks", blocksInserted, "parents", parentsInserted)
		}

		for _, b := range batch {
			p.cp.Notify(checkpoint.Event{Origin: checkpoint.OriginBlocks, BlockHash: b.Hash})
		}

		blocks = nil
		parents = nil
		batch = nil
		lastCommit = time.Now()
	}

	for {
		item, ok := p.in.Pop(stopCh)
		if !ok {
			flush()
			return
		}
		if !p.cfg.Disabled(config.FeatureBlocksTable) {
			blocks = append(blocks, item.Row)
		}
		if !p.cfg.Disabled(config.FeatureBlockParentTable) {
			parents = append(parents, item.Parents...)
		}
		batch = append(batch, item)

		if len(batch) >= p.batchSize || (len(batch) > 0 && time.Since(lastCommit) > 2*time.Second) {
			flush()
		}
	}
}

func (p *BlockPersistor) commitBlocks(blocks []store.Block, parents []store.BlockParent) (int64, int64) {
	var blocksInserted, parentsInserted int64
	const blockBatchCap = 3500 // 2^16 / fields, matches insert_blocks' cap
	for _, chunk := range chunkBlocks(blocks, min(int(200*p.cfg.BatchScale), blockBatchCap)) {
		n, err := p.db.InsertBlocks(chunk)
		if err != nil {
			p.log.Crit("insert blocks failed", "err", err)
		}
		blocksInserted += n
	}
	const parentBatchCap = 10000
	for _, chunk := range chunkBlockParents(parents, min(int(400*p.cfg.BatchScale), parentBatchCap)) {
		n, err := p.db.InsertBlockParents(chunk)
		if err != nil {
			p.log.Crit("insert block parents failed", "err", err)
		}
		parentsInserted += n
	}
	return blocksInserted, parentsInserted
}

func (p *BlockPersistor) deleteAcceptances(hashes []dbtype.Hash) int64 {
	const batchCap = 50000
	var deleted int64
	for _, chunk := range chunkHashes(hashes, min(int(100*p.cfg.BatchScale), batchCap)) {
		n, err := p.db.DeleteTransactionAcceptances(chunk)
		if err != nil {
			p.log.Crit("delete transaction acceptances failed", "err", err)
		}
		deleted += n
	}
	return deleted
}

func chunkBlocks(s []store.Block, size int) [][]store.Block {
	if size < 1 {
		size = 1
	}
	var out [][]store.Block
	for len(s) > 0 {
		n := size
		if n > len(s) {
			n = len(s)
		}
		out = append(out, s[:n])
		s = s[n:]
	}
	return out
}

func chunkBlockParents(s []store.BlockParent, size int) [][]store.BlockParent {
	if size < 1 {
		size = 1
	}
	var out [][]store.BlockParent
	for len(s) > 0 {
		n := size
		if n > len(s) {
			n = len(s)
		}
		out = append(out, s[:n])
		s = s[n:]
	}
	return out
}

func chunkHashes(s []dbtype.Hash, size int) [][]dbtype.Hash {
	if size < 1 {
		size = 1
	}
	var out [][]dbtype.Hash
	for len(s) > 0 {
		n := size
		if n > len(s) {
			n = len(s)
		}
		out = append(out, s[:n])
		s = s[n:]
	}
	return out
}
