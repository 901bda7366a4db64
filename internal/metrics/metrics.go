package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RowsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vandash_source_rows_parsed_total",
			Help: "Source rows successfully cleaned, by source",
		},
		[]string{"source"},
	)

	RowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vandash_source_rows_skipped_total",
			Help: "Source rows skipped during cleaning, by source and reason",
		},
		[]string{"source", "reason"},
	)

	MergeUnmatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vandash_merge_unmatched_keys_total",
			Help: "Join keys present in a secondary source but absent from the base table",
		},
		[]string{"source"},
	)

	SnapshotRebuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vandash_snapshot_rebuilds_total",
			Help: "Completed ETL snapshot rebuilds",
		},
	)

	FetchCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vandash_fetch_calls_total",
			Help: "Source snapshot download attempts",
		},
		[]string{"source", "status"},
	)

	FetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vandash_fetch_latency_seconds",
			Help:    "Source snapshot download latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
)
