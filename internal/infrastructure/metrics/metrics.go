package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. Register once per process; the
// engine treats a nil *Metrics as metrics disabled.
type Metrics struct {
	// Record metrics
	RecordsProcessed *prometheus.CounterVec
	RecordsDiscarded *prometheus.CounterVec

	// Dispute metrics
	DisputesOpened   prometheus.Counter
	DisputesResolved prometheus.Counter
	Chargebacks      prometheus.Counter

	// Run metrics
	AccountsTracked prometheus.Gauge
	RunDuration     prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RecordsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payengine_records_processed_total",
				Help: "Total number of records applied to the ledger",
			},
			[]string{"kind"},
		),
		RecordsDiscarded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payengine_records_discarded_total",
				Help: "Total number of records discarded by precondition checks",
			},
			[]string{"kind", "reason"},
		),

		DisputesOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payengine_disputes_opened_total",
			Help: "Total number of disputes opened",
		}),
		DisputesResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payengine_disputes_resolved_total",
			Help: "Total number of disputes resolved",
		}),
		Chargebacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payengine_chargebacks_total",
			Help: "Total number of chargebacks settled",
		}),

		AccountsTracked: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "payengine_accounts_tracked",
			Help: "Number of client accounts in the ledger",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "payengine_run_duration_seconds",
			Help:    "Duration of full processing runs",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
