package pipeline

import (
	"github.com/simply-kaspa/indexer-go/internal/config"
	"github.com/simply-kaspa/indexer-go/internal/log"
	"github.com/simply-kaspa/indexer-go/internal/mapping"
	"github.com/simply-kaspa/indexer-go/internal/queue"
)

// BlockProcessor maps fetched blocks into store rows, grounded on the
// per-block mapping half of
// original_source/indexer/src/blocks/process_blocks.rs (the batching
// and commit half is BlockPersistor).
type BlockProcessor struct {
	in     *queue.Bounded[fetchedBlock]
	out    *queue.Bounded[processedBlock]
	mapper *mapping.Mapper
	cfg    config.Config
	log    *log.Logger
}

// NewBlockProcessor constructs a BlockProcessor.
func NewBlockProcessor(in *queue.Bounded[fetchedBlock], out *queue.Bounded[processedBlock], mapper *mapping.Mapper, cfg config.Config) *BlockProcessor {
	return &BlockProcessor{in: in, out: out, mapper: mapper, cfg: cfg, log: log.NewModuleLogger(log.BlockProcessor)}
}

// Run maps blocks until stopCh closes.
func (p *BlockProcessor) Run(stopCh <-chan struct{}) {
	for {
		fb, ok := p.in.Pop(stopCh)
		if !ok {
			return
		}
		row := processedBlock{
			Hash:      fb.Block.Header.Hash,
			Timestamp: fb.Block.Header.Timestamp,
			Synced:    fb.Synced,
		}
		if !p.cfg.Disabled(config.FeatureBlocksTable) {
			row.Row = p.mapper.MapBlock(&fb.Block)
		}
		if !p.cfg.Disabled(config.FeatureBlockParentTable) {
			row.Parents = p.mapper.MapBlockParents(&fb.Block)
		}
		if !p.out.Push(row, stopCh) {
			return
		}
	}
}
