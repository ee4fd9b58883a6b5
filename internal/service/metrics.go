package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	wishlistPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wishlist_persist_failures_total",
		Help: "Wishlist writes that failed; the caller still received the mutated list",
	})

	wishlistReadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wishlist_read_failures_total",
		Help: "Wishlist reads that failed or found a corrupt blob and degraded to empty",
	})

	wishlistMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_mutations_total",
		Help: "Wishlist mutations by operation",
	}, []string{"operation"})

	wishlistWatchers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wishlist_watchers",
		Help: "Open wishlist change streams",
	})
)
