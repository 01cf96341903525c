package pipeline

import (
	"context"
	"time"

	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/dedup"
	"github.com/simply-kaspa/indexer-go/internal/log"
	"github.com/simply-kaspa/indexer-go/internal/queue"
	"github.com/simply-kaspa/indexer-go/internal/rpcclient"
)

const syncCheckInterval = 30 * time.Second

// BlockFetcher repeatedly calls GetBlocks from a low hash and fans the
// result out into a blocks queue and a transactions queue, grounded on
// original_source/indexer/src/blocks/fetch_blocks.rs's KaspaBlocksFetcher.
type BlockFetcher struct {
	pool        *rpcclient.Pool
	blocksOut   *queue.Bounded[fetchedBlock]
	txsOut      *queue.Bounded[fetchedTxGroup]
	log         *log.Logger
	dedupCache  *dedup.TTLCache
	lowHash     dbtype.Hash
	synced      bool
	lagCount    int
	lastSyncChk time.Time
	tipHashes   map[dbtype.Hash]struct{}
}

// NewBlockFetcher constructs a BlockFetcher resuming from lowHash, with
// a dedup cache sized throughput*ttl*2 per spec.md §4.1.
func NewBlockFetcher(pool *rpcclient.Pool, blocksOut *queue.Bounded[fetchedBlock], txsOut *queue.Bounded[fetchedTxGroup], lowHash dbtype.Hash, netBPS float64, cacheTTL time.Duration) *BlockFetcher {
	capacity := int(netBPS * cacheTTL.Seconds() * 2)
	if capacity < 1 {
		capacity = 1
	}
	return &BlockFetcher{
		pool:        pool,
		blocksOut:   blocksOut,
		txsOut:      txsOut,
		log:         log.NewModuleLogger(log.BlockFetcher),
		dedupCache:  dedup.New(cacheTTL, capacity),
		lowHash:     lowHash,
		lastSyncChk: time.Now().Add(-syncCheckInterval),
		tipHashes:   make(map[dbtype.Hash]struct{}),
	}
}

// Run fetches blocks in a loop until stopCh is closed.
func (f *BlockFetcher) Run(stopCh <-chan struct{}) {
	startTime := time.Now()
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		client, err := f.pool.Acquire(context.Background())
		if err != nil {
			f.log.Warn("failed to acquire rpc client", "err", err)
			if !sleepOrStop(5*time.Second, stopCh) {
				return
			}
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), rpcclient.CallTimeout)
		f.log.Debug("getting blocks", "lowHash", f.lowHash.String())
		result, err := client.GetBlocks(ctx, f.lowHash, true, true)
		cancel()
		if err != nil {
			f.pool.Discard(client)
			if !sleepOrStop(5*time.Second, stopCh) {
				return
			}
			continue
		}

		if !f.synced && len(result.Blocks) < 100 && time.Since(f.lastSyncChk) >= syncCheckInterval {
			f.refreshTipHashes(client)
		}
		f.pool.Release(client)

		blocksLen := len(result.Blocks)
		if blocksLen > 1 {
			f.handleBlocks(startTime, result.Blocks, stopCh)
		}
		if blocksLen < 50 {
			if !sleepOrStop(2*time.Second, stopCh) {
				return
			}
		}
	}
}

func (f *BlockFetcher) refreshTipHashes(client rpcclient.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), rpcclient.CallTimeout)
	defer cancel()
	info, err := client.GetBlockDAGInfo(ctx)
	if err != nil {
		return
	}
	tips := make(map[dbtype.Hash]struct{}, len(info.TipHashes))
	for _, h := range info.TipHashes {
		tips[h] = struct{}{}
	}
	f.tipHashes = tips
	f.lastSyncChk = time.Now()
}

func (f *BlockFetcher) handleBlocks(startTime time.Time, blocks []rpcclient.Block, stopCh <-chan struct{}) {
	f.lowHash = blocks[len(blocks)-1].Header.Hash
	var newestTimestamp int64
	for _, b := range blocks {
		if f.synced && b.Header.Timestamp > newestTimestamp {
			newestTimestamp = b.Header.Timestamp
		}
		hash := b.Header.Hash
		if !f.synced {
			if _, ok := f.tipHashes[hash]; ok {
				elapsed := time.Since(startTime)
				f.log.Info("block fetcher synced", "elapsed", elapsed.Truncate(time.Second).String())
				f.synced = true
			}
		}
		if f.dedupCache.Contains(hash) {
			f.log.Debug("ignoring known block hash", "hash", hash.String())
			continue
		}
		transactions := b.Transactions
		b.Transactions = nil
		if !f.blocksOut.Push(fetchedBlock{Block: b, Synced: f.synced}, stopCh) {
			return
		}
		if !f.txsOut.Push(fetchedTxGroup{BlockHash: hash, Transactions: transactions}, stopCh) {
			return
		}
		f.dedupCache.Insert(hash)
	}
	f.lagCount = f.checkLag(newestTimestamp)
}

func (f *BlockFetcher) checkLag(newestTimestamp int64) int {
	if !f.synced {
		return 0
	}
	skewSeconds := time.Now().Unix() - newestTimestamp/1000
	if skewSeconds < 30 {
		return 0
	}
	if f.lagCount >= 15 {
		f.log.Warn("block fetcher is lagging behind", "skewSeconds", skewSeconds)
		return 0
	}
	return f.lagCount + 1
}

func sleepOrStop(d time.Duration, stopCh <-chan struct{}) bool {
	select {
	case <-time.After(d):
		return true
	case <-stopCh:
		return false
	}
}
