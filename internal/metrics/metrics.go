package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courier_events_received_total",
		Help: "Total number of inbound analytics events, labelled by type.",
	}, []string{"type"})

	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courier_deliveries_total",
		Help: "Total number of outbound requests, labelled by vendor and outcome.",
	}, []string{"vendor", "outcome"})

	FanoutSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "courier_fanout_requests",
		Help:    "Number of outbound requests produced per dispatched event.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "courier_ingest_duration_ms",
		Help:    "End-to-end event ingest latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
)
