package pipeline

import (
	"sync"
	"time"

	"github.com/simply-kaspa/indexer-go/internal/checkpoint"
	"github.com/simply-kaspa/indexer-go/internal/config"
	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/log"
	"github.com/simply-kaspa/indexer-go/internal/queue"
	"github.com/simply-kaspa/indexer-go/internal/store"
)

// TransactionPersistor batches mapped transactions and commits them,
// grounded on the batching/commit half of
// original_source/indexer/src/transactions/process_transactions.rs:
// transactions, inputs, outputs and output-derived addresses commit
// concurrently (the original fans these out via task::spawn), then
// input-address resolution runs once outputs are durable, and the
// block/tx mapping rows commit last of all.
type TransactionPersistor struct {
	in  *queue.Bounded[processedTx]
	db  *store.Client
	cp  *checkpoint.Coordinator
	cfg config.Config
	log *log.Logger

	batchSize int
}

// NewTransactionPersistor constructs a TransactionPersistor.
func NewTransactionPersistor(in *queue.Bounded[processedTx], db *store.Client, cp *checkpoint.Coordinator, cfg config.Config) *TransactionPersistor {
	return &TransactionPersistor{
		in:        in,
		db:        db,
		cp:        cp,
		cfg:       cfg,
		log:       log.NewModuleLogger(log.TxPersistor),
		batchSize: int(5000 * cfg.BatchScale),
	}
}

// Run accumulates and commits batches until stopCh closes and the queue
// has drained.
func (p *TransactionPersistor) Run(stopCh <-chan struct{}) {
	lastCommit := time.Now()
	var batch []processedTx

	flush := func() {
		if len(batch) == 0 {
			return
		}
		p.commitBatch(batch)
		batch = nil
		lastCommit = time.Now()
	}

	for {
		item, ok := p.in.Pop(stopCh)
		if !ok {
			flush()
			return
		}
		batch = append(batch, item)
		if len(batch) >= p.batchSize || time.Since(lastCommit) > 2*time.Second {
			flush()
		}
	}
}

func (p *TransactionPersistor) commitBatch(batch []processedTx) {
	commitStart := time.Now()
	defer func() {
		txCommitLatencyGauge.Update(time.Since(commitStart).Milliseconds())
	}()

	var rows []store.Transaction
	var inputs []store.TransactionInput
	var outputs []store.TransactionOutput
	var outAddrs []store.AddressTransaction
	var scriptTxs []store.ScriptTransaction
	var blockTxs []store.BlockTransaction
	var newTxIDs [][]byte

	for _, item := range batch {
		blockTxs = append(blockTxs, item.BlockTransaction)
		if !item.IsNew {
			continue
		}
		if !p.cfg.Disabled(config.FeatureTransactionsTable) {
			rows = append(rows, item.Row)
		}
		inputs = append(inputs, item.Inputs...)
		outputs = append(outputs, item.Outputs...)
		outAddrs = append(outAddrs, item.OutputAddresses...)
		scriptTxs = append(scriptTxs, item.ScriptTransactions...)
		newTxIDs = append(newTxIDs, item.Row.TransactionID.Bytes())
	}

	var wg sync.WaitGroup
	var txCount, inCount, outCount, outAddrCount, scriptTxCount int64

	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, chunk := range chunkTransactions(rows, min(int(400*p.cfg.BatchScale), 8000)) {
			n, err := p.db.InsertTransactions(chunk)
			if err != nil {
				p.log.Crit("insert transactions failed", "err", err)
			}
			txCount += n
		}
	}()

	if !p.cfg.Disabled(config.FeatureTransactionsInputsTable) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, chunk := range chunkInputs(inputs, min(int(400*p.cfg.BatchScale), 8000)) {
				n, err := p.db.InsertTransactionInputs(chunk)
				if err != nil {
					p.log.Crit("insert transaction inputs failed", "err", err)
				}
				inCount += n
			}
		}()
	}

	if !p.cfg.Disabled(config.FeatureTransactionsOutputsTable) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, chunk := range chunkOutputs(outputs, min(int(500*p.cfg.BatchScale), 10000)) {
				n, err := p.db.InsertTransactionOutputs(chunk)
				if err != nil {
					p.log.Crit("insert transaction outputs failed", "err", err)
				}
				outCount += n
			}
		}()
	}

	if !p.cfg.Disabled(config.FeatureAddressesTransactionsTable) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, chunk := range chunkAddressTransactions(outAddrs, min(int(500*p.cfg.BatchScale), 20000)) {
				n, err := p.db.InsertAddressTransactions(chunk)
				if err != nil {
					p.log.Crit("insert address transactions failed", "err", err)
				}
				outAddrCount += n
			}
		}()
	}

	if !p.cfg.Disabled(config.FeatureScriptsTransactionsTable) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, chunk := range chunkScriptTransactions(scriptTxs, min(int(500*p.cfg.BatchScale), 20000)) {
				n, err := p.db.InsertScriptTransactions(chunk)
				if err != nil {
					p.log.Crit("insert script transactions failed", "err", err)
				}
				scriptTxCount += n
			}
		}()
	}

	wg.Wait()

	var inAddrCount int64
	if !p.cfg.Disabled(config.FeatureResolveAddresses) && !p.cfg.Disabled(config.FeatureAddressesTransactionsTable) {
		for _, chunk := range chunkTxIDs(newTxIDs, min(int(400*p.cfg.BatchScale), 8000)) {
			n, err := p.db.InsertAddressTransactionsFromInputs(chunk)
			if err != nil {
				p.log.Crit("resolve address transactions from inputs failed", "err", err)
			}
			inAddrCount += n
		}
	}

	var inScriptCount int64
	if !p.cfg.Disabled(config.FeatureResolveAddresses) && !p.cfg.Disabled(config.FeatureScriptsTransactionsTable) {
		for _, chunk := range chunkTxIDs(newTxIDs, min(int(400*p.cfg.BatchScale), 8000)) {
			n, err := p.db.InsertScriptTransactionsFromInputs(chunk)
			if err != nil {
				p.log.Crit("resolve script transactions from inputs failed", "err", err)
			}
			inScriptCount += n
		}
	}

	var blockTxCount int64
	for _, chunk := range chunkBlockTransactions(blockTxs, min(int(800*p.cfg.BatchScale), 30000)) {
		n, err := p.db.InsertBlockTransactions(chunk)
		if err != nil {
			p.log.Crit("insert block transactions failed", "err", err)
		}
		blockTxCount += n
	}

	txCommitRowsGauge.Update(txCount + inCount + outCount + outAddrCount + inAddrCount + scriptTxCount + inScriptCount + blockTxCount)
	p.log.Info("committed transactions", "transactions", txCount, "inputs", inCount, "outputs", outCount,
		"outputAddresses", outAddrCount, "inputAddresses", inAddrCount,
		"scriptTransactions", scriptTxCount, "inputScriptTransactions", inScriptCount, "blockRelations", blockTxCount)

	seen := make(map[dbtype.Hash]struct{}, len(batch))
	for _, item := range batch {
		if _, ok := seen[item.BlockHash]; ok {
			continue
		}
		seen[item.BlockHash] = struct{}{}
		p.cp.Notify(checkpoint.Event{Origin: checkpoint.OriginTransactions, BlockHash: item.BlockHash})
	}
}

func chunkTransactions(s []store.Transaction, size int) [][]store.Transaction {
	if size < 1 {
		size = 1
	}
	var out [][]store.Transaction
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

func chunkInputs(s []store.TransactionInput, size int) [][]store.TransactionInput {
	if size < 1 {
		size = 1
	}
	var out [][]store.TransactionInput
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

func chunkOutputs(s []store.TransactionOutput, size int) [][]store.TransactionOutput {
	if size < 1 {
		size = 1
	}
	var out [][]store.TransactionOutput
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

func chunkAddressTransactions(s []store.AddressTransaction, size int) [][]store.AddressTransaction {
	if size < 1 {
		size = 1
	}
	var out [][]store.AddressTransaction
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

func chunkScriptTransactions(s []store.ScriptTransaction, size int) [][]store.ScriptTransaction {
	if size < 1 {
		size = 1
	}
	var out [][]store.ScriptTransaction
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

func chunkBlockTransactions(s []store.BlockTransaction, size int) [][]store.BlockTransaction {
	if size < 1 {
		size = 1
	}
	var out [][]store.BlockTransaction
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

func chunkTxIDs(s [][]byte, size int) [][][]byte {
	if size < 1 {
		size = 1
	}
	var out [][][]byte
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
