package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Variant outcomes
const (
	OutcomeUpdated   = "updated"
	OutcomeDryRun    = "dry_run"
	OutcomeUnchanged = "unchanged"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

var (
	variantsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insales_variants_processed_total",
		Help: "InSales variants processed, by outcome",
	}, []string{"outcome"})

	modifiersEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insales_modifiers_total",
		Help: "Variant modifiers produced, by field",
	}, []string{"field"})

	remoteUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insales_remote_updates_total",
		Help: "Variant updates, by environment (prod writes, test only logs)",
	}, []string{"env"})

	configRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "insales_config_run_duration_seconds",
		Help:    "Duration of configuration runs",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"status"})
)
