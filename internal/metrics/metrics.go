// Package metrics exposes the engine's counters and gauges to
// Prometheus, in the same promauto-package-global style as the rest of
// the corpus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var GCPassesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hashlife_gc_passes_total",
	Help: "Number of forest GC passes run",
}, []string{"kind"}) // kind: full, partial

var GCReclaimedEntries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hashlife_gc_reclaimed_entries_total",
	Help: "Number of interning-table entries reclaimed by GC",
}, []string{"depth"})

var RecurseCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "hashlife_recurse_cache_hits_total",
	Help: "Number of iterate_recurse calls served from the per-entry res cache",
})

var RecurseCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "hashlife_recurse_cache_misses_total",
	Help: "Number of iterate_recurse calls that required recomputation",
})

var StreamingSolitonicDetections = promauto.NewCounter(prometheus.CounterOpts{
	Name: "hashlife_streaming_solitonic_detections_total",
	Help: "Number of dual-layer nodes found non-interacting by is_solitonic",
})

var StreamingBiResultCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "hashlife_streaming_bi_result_cache_size",
	Help: "Current number of entries held in the streaming bi-result cache",
})

var ForestBytes = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "hashlife_forest_bytes",
	Help: "Estimated resident bytes across all forest layers",
})

var ForestLayerEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "hashlife_forest_layer_entries",
	Help: "Number of live entries in a forest layer",
}, []string{"depth"})
