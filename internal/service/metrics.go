package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Labels: reason
	ReminderDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "place_between",
			Subsystem: "reminders",
			Name:      "decisions_total",
			Help:      "Reminder evaluations by outcome reason",
		},
		[]string{"reason"},
	)

	// Labels: result (ok, busy, error)
	ReminderBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "place_between",
			Subsystem: "reminders",
			Name:      "batches_total",
			Help:      "Reminder batch runs by result",
		},
		[]string{"result"},
	)

	ReminderBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "place_between",
			Subsystem: "reminders",
			Name:      "batch_duration_seconds",
			Help:      "Duration of reminder batch runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// Labels: kind (range, week, month)
	MirrorReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "place_between",
			Subsystem: "mirror",
			Name:      "reports_total",
			Help:      "Mirror reports built by kind",
		},
		[]string{"kind"},
	)
)
