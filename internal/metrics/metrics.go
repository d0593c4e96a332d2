package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventorymap_layout_mutations_total",
		Help: "Committed layout mutations by operation.",
	}, []string{"op"})

	MutationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventorymap_layout_mutation_errors_total",
		Help: "Rejected or failed layout mutations by operation.",
	}, []string{"op"})

	Reloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventorymap_dataset_reloads_total",
		Help: "Full dataset reloads from the row store.",
	})

	ReloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventorymap_dataset_reload_seconds",
		Help:    "Wall time of full dataset reloads.",
		Buckets: prometheus.DefBuckets,
	})
)
