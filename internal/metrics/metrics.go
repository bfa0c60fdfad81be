package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal tracks completed scans by source (http, kafka, poller).
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_scanner_scans_total",
			Help: "Total number of completed arbitrage scans",
		},
		[]string{"source"},
	)

	// ScanDurationSeconds tracks scan latency.
	ScanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arb_scanner_scan_duration_seconds",
		Help:    "Duration of a single arbitrage scan",
		Buckets: prometheus.DefBuckets,
	})

	// RecordsScannedTotal tracks odds records fed into scans.
	RecordsScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_scanner_records_scanned_total",
		Help: "Total number of odds records scanned",
	})

	// CombinationsTestedTotal tracks cross-bookmaker combinations tested.
	CombinationsTestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_scanner_combinations_tested_total",
		Help: "Total number of bookmaker combinations tested for arbitrage",
	})

	// OpportunitiesDetectedTotal tracks arbitrage opportunities detected by market type.
	OpportunitiesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_scanner_opportunities_detected_total",
			Help: "Total number of arbitrage opportunities detected",
		},
		[]string{"market_type"},
	)

	// OpportunityProfitPercent tracks guaranteed profit of detected opportunities.
	OpportunityProfitPercent = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arb_scanner_opportunity_profit_percent",
		Help:    "Guaranteed profit of detected opportunities in percent",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10, 20},
	})

	// RecordsRejectedTotal tracks records excluded from detection by stage (ingest, detector).
	RecordsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_scanner_records_rejected_total",
			Help: "Total number of odds records rejected",
		},
		[]string{"stage"},
	)

	// IncompleteMarketsTotal tracks market groups missing a required outcome.
	IncompleteMarketsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_scanner_incomplete_markets_total",
		Help: "Total number of market groups skipped for lacking an outcome",
	})
)
