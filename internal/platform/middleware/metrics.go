// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// # HTTP Metrics

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholaris_admin_http_requests_total",
			Help: "Total number of HTTP requests handled by the admin gateway",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scholaris_admin_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	guardRedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholaris_admin_guard_redirects_total",
			Help: "Route guard redirects to a login page, by target",
		},
		[]string{"target"},
	)

	sessionCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholaris_admin_session_cache_results_total",
			Help: "Session cache lookups during rehydration, by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveGuardRedirect records a route guard redirect toward a login page.
func ObserveGuardRedirect(target string) {
	guardRedirectsTotal.WithLabelValues(target).Inc()
}

// ObserveSessionCache records the outcome of a session cache lookup
// (hit, miss, stale).
func ObserveSessionCache(outcome string) {
	sessionCacheResults.WithLabelValues(outcome).Inc()
}

// Metrics collects per-request Prometheus metrics.
//
// Paths are normalized before being used as labels so that per-resource
// identifiers do not explode metric cardinality.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			startTime := time.Now()
			normalizedPath := normalizeMetricPath(request.URL.Path)

			wrapped := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
			next.ServeHTTP(wrapped, request)

			duration := time.Since(startTime).Seconds()
			status := strconv.Itoa(wrapped.status)

			httpRequestsTotal.WithLabelValues(request.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(request.Method, normalizedPath).Observe(duration)
		})
	}
}

// normalizeMetricPath collapses dynamic trailing segments under the resource
// proxy so each remote collection produces a single label value.
func normalizeMetricPath(path string) string {

	const proxyPrefix = "/api/v1/proxy/"

	if strings.HasPrefix(path, proxyPrefix) {
		rest := strings.TrimPrefix(path, proxyPrefix)
		if idx := strings.IndexByte(rest, '/'); idx > 0 {
			return proxyPrefix + rest[:idx] + "/{rest}"
		}
	}

	return path
}
