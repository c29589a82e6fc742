// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are registered against the default Prometheus registry so the
// same process can expose them at /metrics alongside the read API (see
// internal/api), without the indexer loop needing to know about HTTP.
type Metrics struct {
	BlocksProcessed prometheus.Counter
	BlockErrors     prometheus.Counter
	BlocksSkipped   prometheus.Counter
	ChainHead       prometheus.Gauge
	NextHeight      prometheus.Gauge
	LagBlocks       prometheus.Gauge
}

// NewMetrics registers and returns the indexer's metrics against the
// default Prometheus registry. Safe to call at most once per process
// (registration against the default registry panics on duplicate names).
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

// newMetrics registers against the given registerer, so tests can use a
// throwaway registry per case instead of sharing process-global state.
func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BlocksProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "indexer_blocks_processed_total",
			Help: "Number of blocks successfully written to storage.",
		}),
		BlockErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "indexer_block_errors_total",
			Help: "Number of block-processing attempts that failed (transport, missing data, decode, or storage).",
		}),
		BlocksSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "indexer_blocks_skipped_total",
			Help: "Number of blocks permanently skipped after a malformed Transfer payload (decode errors never succeed on retry).",
		}),
		ChainHead: factory.NewGauge(prometheus.GaugeOpts{
			Name: "indexer_chain_head",
			Help: "Most recently observed chain head height.",
		}),
		NextHeight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "indexer_next_height",
			Help: "Next block height the indexer will attempt to process.",
		}),
		LagBlocks: factory.NewGauge(prometheus.GaugeOpts{
			Name: "indexer_lag_blocks",
			Help: "Chain head minus next height; how many blocks the indexer is behind.",
		}),
	}
}
