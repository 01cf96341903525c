package health

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	metrics "github.com/rcrowley/go-metrics"
)

// rcrowleyBridge adapts internal/pipeline's rcrowley/go-metrics gauges
// (the teacher's own metrics idiom, chaindata_fetcher.go's
// updateGauge/getTimeGauge) into Prometheus exposition, since the
// teacher's own bridge package (metrics/prometheus, used by
// cmd/kcn/main.go) was not part of the retrieval pack. It is a
// Prometheus Collector that walks a rcrowley registry on every scrape
// rather than pre-registering one static Desc per gauge, since the
// registry's gauge set is fixed at process startup (internal/pipeline
// registers them in package-level var blocks) but this keeps the
// bridge generic to whatever is registered.
type rcrowleyBridge struct {
	registry metrics.Registry
}

var rcrowleyMetricDesc = prometheus.NewDesc(
	"kaspaindexer_rcrowley_gauge",
	"Bridged rcrowley/go-metrics gauge value, labeled by its metric name with '/' replaced by '_'.",
	[]string{"name"}, nil,
)

func (b rcrowleyBridge) Describe(ch chan<- *prometheus.Desc) {
	ch <- rcrowleyMetricDesc
}

func (b rcrowleyBridge) Collect(ch chan<- prometheus.Metric) {
	collectFrom(b.registry, ch)
}

// collectFrom walks registry and emits one constant metric per gauge,
// split out of Collect so it can be exercised against a throwaway
// registry in tests instead of the process-wide default.
func collectFrom(registry metrics.Registry, ch chan<- prometheus.Metric) {
	registry.Each(func(name string, i interface{}) {
		gauge, ok := i.(metrics.Gauge)
		if !ok {
			return
		}
		label := strings.ReplaceAll(name, "/", "_")
		ch <- prometheus.MustNewConstMetric(rcrowleyMetricDesc, prometheus.GaugeValue, float64(gauge.Value()), label)
	})
}

func init() {
	prometheus.MustRegister(rcrowleyBridge{registry: metrics.DefaultRegistry})
}
