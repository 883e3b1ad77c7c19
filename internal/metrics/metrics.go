// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

// Package metrics exposes the Prometheus collectors for the HTTP layer and
// the DuckDB store. Collectors are registered once on the default registry
// and served from /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "npcgraph",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed, by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "npcgraph",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// HTTPRequestsInFlight tracks concurrently handled requests.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "npcgraph",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		},
	)

	// DBQueriesTotal counts store operations by operation name and outcome.
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "npcgraph",
			Subsystem: "db",
			Name:      "queries_total",
			Help:      "Total database operations, by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	// DBQueryDuration observes store operation latency.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "npcgraph",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database operation latency in seconds.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"operation"},
	)

	// AuthFailuresTotal counts rejected authentication attempts by reason.
	AuthFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "npcgraph",
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Authentication failures, by reason.",
		},
		[]string{"reason"},
	)
)

// ObserveRequest records one completed HTTP request.
func ObserveRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveQuery records one store operation.
func ObserveQuery(operation string, err error, duration time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	DBQueriesTotal.WithLabelValues(operation, outcome).Inc()
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
