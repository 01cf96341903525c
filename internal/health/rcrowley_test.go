package health

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	metrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
)

func TestRcrowleyBridgeCollectsRegisteredGauges(t *testing.T) {
	registry := metrics.NewRegistry()
	gauge := metrics.NewRegisteredGauge("bridge/test/gauge", registry)
	gauge.Update(42)

	bridge := rcrowleyBridge{registry: registry}
	assert.Equal(t, 1, testutil.CollectAndCount(bridge))
	assert.Equal(t, float64(42), testutil.ToFloat64(bridge))
}

func TestRcrowleyBridgeSkipsNonGaugeMetrics(t *testing.T) {
	registry := metrics.NewRegistry()
	metrics.NewRegisteredCounter("bridge/test/counter", registry)

	bridge := rcrowleyBridge{registry: registry}
	assert.Equal(t, 0, testutil.CollectAndCount(bridge))
}

func TestRcrowleyBridgeSanitizesSlashesInLabel(t *testing.T) {
	registry := metrics.NewRegistry()
	ch := make(chan prometheus.Metric, 1)
	metrics.NewRegisteredGauge("kaspaindexer/blocks/commitMillis", registry)
	collectFrom(registry, ch)
	close(ch)

	m := <-ch
	assert.NotNil(t, m)

	expected := `
# HELP kaspaindexer_rcrowley_gauge Bridged rcrowley/go-metrics gauge value, labeled by its metric name with '/' replaced by '_'.
# TYPE kaspaindexer_rcrowley_gauge gauge
kaspaindexer_rcrowley_gauge{name="kaspaindexer_blocks_commitMillis"} 0
`
	assert.NoError(t, testutil.CollectAndCompare(rcrowleyBridge{registry: registry}, strings.NewReader(expected)))
}
