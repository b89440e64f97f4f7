package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shloka_fetch_total",
		Help: "Total number of verse document fetches by outcome",
	}, []string{"status"})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shloka_fetch_duration_seconds",
		Help:    "Duration of a single verse document fetch in seconds",
		Buckets: prometheus.DefBuckets,
	})

	ViewEvaluations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shloka_view_evaluations_total",
		Help: "Total number of view query evaluations",
	})
)
