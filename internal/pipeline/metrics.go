package pipeline

import "github.com/rcrowley/go-metrics"

// Per-stage commit gauges, grounded on chaindata_fetcher.go's
// updateGauge pattern (a rcrowley/go-metrics Gauge per request type,
// updated with elapsed.Milliseconds() after every insert). Registered
// into metrics.DefaultRegistry, the same registry internal/health
// bridges into Prometheus exposition.
var (
	blockCommitLatencyGauge = metrics.NewRegisteredGauge("kaspaindexer/blocks/commitMillis", metrics.DefaultRegistry)
	blockCommitRowsGauge    = metrics.NewRegisteredGauge("kaspaindexer/blocks/commitRows", metrics.DefaultRegistry)
	txCommitLatencyGauge    = metrics.NewRegisteredGauge("kaspaindexer/transactions/commitMillis", metrics.DefaultRegistry)
	txCommitRowsGauge       = metrics.NewRegisteredGauge("kaspaindexer/transactions/commitRows", metrics.DefaultRegistry)
	vcpCommitLatencyGauge   = metrics.NewRegisteredGauge("kaspaindexer/virtualchain/commitMillis", metrics.DefaultRegistry)
)
