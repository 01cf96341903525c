// Package checkpoint implements the cross-stage resume protocol: a
// candidate block hash is taken from the Vcp event stream when
// virtual-chain processing is enabled (from the Blocks stream otherwise)
// and is only persisted once both the Blocks and Transactions event
// streams (Blocks alone when transaction processing is disabled) have
// acknowledged it. This is the single
// mechanism that makes restart-after-crash resumable without
// re-fetching already-durable data (spec.md §4.5), grounded on
// original_source/indexer/src/checkpoint.rs.
package checkpoint

import (
	"sync"
	"time"

	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/log"
	"github.com/simply-kaspa/indexer-go/internal/store"
)

// Origin identifies which pipeline stage emitted a checkpoint Event.
type Origin int

const (
	OriginBlocks Origin = iota
	OriginTransactions
	OriginVcp
)

// Event is one stage's acknowledgement that it has durably processed
// up to BlockHash.
type Event struct {
	Origin    Origin
	BlockHash dbtype.Hash
}

const (
	saveInterval   = 60 * time.Second
	warnInterval   = 60 * time.Second
	failedTimeout  = 600 * time.Second
	blockVarKey    = "block_checkpoint"
	legacyVarKey   = "vspc_last_start_hash"
	pollIdleSleep  = 100 * time.Millisecond
)

// Coordinator runs process_checkpoints's state machine: it owns a
// single candidate hash at a time and only writes it to the vars table
// once every required stage has acknowledged it.
type Coordinator struct {
	db *store.Client
	log *log.Logger

	vcpDisabled bool
	txDisabled  bool

	events chan Event
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New constructs a Coordinator. vcpDisabled/txDisabled mirror
// --disable virtual-chain-processing/transaction-processing, which
// change which stages must acknowledge a candidate before it is saved.
func New(db *store.Client, vcpDisabled, txDisabled bool) *Coordinator {
	return &Coordinator{
		db:          db,
		log:         log.NewModuleLogger(log.Checkpoint),
		vcpDisabled: vcpDisabled,
		txDisabled:  txDisabled,
		events:      make(chan Event, 4096),
		stopCh:      make(chan struct{}),
	}
}

// LoadResumeHash reads the last saved checkpoint, falling back to the
// legacy vars key for databases migrated from an older generation of
// this indexer (original_source/indexer/src/vars.rs's
// load_block_checkpoint). Only blockVarKey is ever written going
// forward.
func (c *Coordinator) LoadResumeHash() (dbtype.Hash, bool, error) {
	if v, err := c.db.SelectVar(blockVarKey); err == nil {
		h, perr := dbtype.HashFromHex(v)
		if perr != nil {
			return dbtype.Hash{}, false, perr
		}
		return h, true, nil
	}
	if v, err := c.db.SelectVar(legacyVarKey); err == nil {
		h, perr := dbtype.HashFromHex(v)
		if perr != nil {
			return dbtype.Hash{}, false, perr
		}
		return h, true, nil
	}
	return dbtype.Hash{}, false, nil
}

// Notify enqueues a stage acknowledgement. It never blocks the caller
// for long: the channel is generously sized, and a full channel is
// itself a symptom the run loop's consumer has stalled.
func (c *Coordinator) Notify(e Event) {
	select {
	case c.events <- e:
	case <-c.stopCh:
	}
}

// Run executes the state machine until Stop is called. It must run in
// its own goroutine.
func (c *Coordinator) Run() {
	c.wg.Add(1)
	defer c.wg.Done()

	lastSaved := time.Now()
	lastWarned := time.Now()
	var candidate *dbtype.Hash

	blocksProcessed := make(map[dbtype.Hash]struct{})
	txsProcessed := make(map[dbtype.Hash]struct{})
	cpOkBlocks := false
	cpOkTxs := false

	for {
		select {
		case <-c.stopCh:
			return
		case e := <-c.events:
			switch e.Origin {
			case OriginBlocks:
				if c.vcpDisabled {
					if candidate == nil && time.Since(lastSaved) > saveInterval {
						h := e.BlockHash
						candidate = &h
						lastWarned = time.Now()
						cpOkBlocks = true
						c.log.Debug("selected block_checkpoint candidate", "hash", h.String())
					}
				} else {
					blocksProcessed[e.BlockHash] = struct{}{}
				}
			case OriginTransactions:
				txsProcessed[e.BlockHash] = struct{}{}
			case OriginVcp:
				if candidate == nil && time.Since(lastSaved) > saveInterval {
					h := e.BlockHash
					candidate = &h
					lastWarned = time.Now()
					c.log.Debug("selected block_checkpoint candidate", "hash", h.String())
				}
			}

			if candidate == nil {
				continue
			}
			if !cpOkBlocks {
				if _, ok := blocksProcessed[*candidate]; ok {
					cpOkBlocks = true
					blocksProcessed = make(map[dbtype.Hash]struct{})
				}
			}
			if !cpOkTxs {
				if c.txDisabled {
					cpOkTxs = true
				} else if _, ok := txsProcessed[*candidate]; ok {
					cpOkTxs = true
					txsProcessed = make(map[dbtype.Hash]struct{})
				}
			}

			switch {
			case cpOkBlocks && cpOkTxs:
				hex := candidate.String()
				c.log.Info("saving block_checkpoint", "hash", hex)
				if err := c.db.UpsertVar(blockVarKey, hex); err != nil {
					c.log.Error("failed to save block_checkpoint", "err", err)
				} else {
					lastSaved = time.Now()
				}
				candidate = nil
				cpOkBlocks = false
				cpOkTxs = false
			case time.Since(lastWarned) > warnInterval:
				c.log.Warn("still unable to save block_checkpoint", "hash", candidate.String())
				lastWarned = time.Now()
			case time.Since(lastSaved) > failedTimeout:
				// A new candidate is picked without clearing the processed
				// sets so a lagging stage can still catch up, at the cost
				// of unbounded memory growth until it does.
				c.log.Error("failed to synchronize on block_checkpoint", "hash", candidate.String())
				candidate = nil
			}
		case <-time.After(pollIdleSleep):
		}
	}
}

// Stop signals Run to exit and waits for it to return.
func (c *Coordinator) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}
