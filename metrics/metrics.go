package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesProcessed The total number of processed messages (counter)
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processed_total",
			Help:      "The total number of processed messages",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingFailed total number of message processing failures (counter)
	MessagesProcessingFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processing_failed_total",
			Help:      "The total number of message processing failures",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingDuration The total time spent processing messages (summary with quantiles 0.5, 0.9, and 0.99)
	MessagesProcessingDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "messages",
			Name:       "processing_duration_seconds",
			Help:       "The total time spent processing messages",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"topic", "handler"},
	)
)

var (
	// TicketsIssued The total number of issued tickets by type (counter)
	TicketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tickets",
			Name:      "issued_total",
			Help:      "The total number of issued tickets",
		},
		[]string{"ticket_type"},
	)

	// PurchasesRejected The total number of rejected purchases by error code (counter)
	PurchasesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tickets",
			Name:      "purchases_rejected_total",
			Help:      "The total number of rejected purchases",
		},
		[]string{"code"},
	)

	// TicketsCancelled The total number of cancelled tickets (counter)
	TicketsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tickets",
			Name:      "cancelled_total",
			Help:      "The total number of cancelled tickets",
		},
	)

	// PaymentsSettled The total number of settled payments by strategy and status (counter)
	PaymentsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payments",
			Name:      "settled_total",
			Help:      "The total number of settled payments",
		},
		[]string{"strategy", "status"},
	)
)
