// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	itemsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_batch_items_processed_total",
			Help: "Total work items processed by BatchAnalyzer, by outcome.",
		},
		[]string{"outcome"}, // "succeeded", "failed", "cancelled"
	)

	chunkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "activity_batch_chunk_duration_seconds",
			Help:    "Wall time a worker spends processing and persisting one chunk.",
			Buckets: prometheus.DefBuckets,
		},
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "activity_batch_run_duration_seconds",
			Help:    "Wall time of one RunBatch invocation, from work-item resolution to aggregate recompute.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	persistRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_batch_persist_retries_total",
			Help: "Total persistence retry attempts across all chunks.",
		},
	)
)

func observeOutcome(results []itemResult) {
	for _, r := range results {
		switch {
		case r.Kind == "":
			itemsProcessedTotal.WithLabelValues("succeeded").Inc()
		case r.Kind == KindCancelled:
			itemsProcessedTotal.WithLabelValues("cancelled").Inc()
		default:
			itemsProcessedTotal.WithLabelValues("failed").Inc()
		}
	}
}

func observeChunkDuration(start time.Time) {
	chunkDuration.Observe(time.Since(start).Seconds())
}

func observeRunDuration(start time.Time) {
	runDuration.Observe(time.Since(start).Seconds())
}
