package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

func init() {
	metrics.Registry.MustRegister(
		reconcileTotal,
		reconcileDurationSeconds,
		objectsAppliedTotal,
		objectsDeletedTotal,
	)
}

var (
	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ide_reconcile_total",
			Help: "Total number of workspace reconciliations per result",
		},
		[]string{"result"},
	)

	reconcileDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ide_reconcile_duration_seconds",
			Help:    "Duration of workspace reconciliation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	objectsAppliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ide_objects_applied_total",
			Help: "Total number of generated objects written per kind and operation",
		},
		[]string{"kind", "operation"},
	)

	objectsDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ide_objects_deleted_total",
			Help: "Total number of generated objects deleted per kind",
		},
		[]string{"kind"},
	)
)
