package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ParcelsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trackme_parcels_created_total",
		Help: "Total number of parcels successfully created.",
	})

	ParcelsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trackme_parcels_deleted_total",
		Help: "Total number of parcels deleted.",
	})

	StatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackme_status_updates_total",
		Help: "Total number of status history entries appended, by new status.",
	},
		[]string{"status"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackme_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	TrackingLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trackme_tracking_lookups_total",
		Help: "Public tracking lookups by outcome (cache_hit, cache_miss, not_found).",
	},
		[]string{"result"},
	)

	TrackingCacheItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trackme_tracking_cache_items",
		Help: "Current number of active parcels in the tracking cache.",
	})

	OutboxPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trackme_outbox_published_total",
		Help: "Total number of outbox events delivered to the broker.",
	})

	OutboxFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trackme_outbox_failed_total",
		Help: "Total number of failed outbox delivery attempts.",
	})
)
