// Copyright 2024 The Prbot Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes the Prometheus counters and histograms prbotd
// registers for its HTTP surface, webhook dispatch and status engine runs.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// httpRequestsTotal counts every request the chi router serves, labeled by
// route, method and status code.
var httpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "prbot_http_requests_total",
		Help: "Total HTTP requests served by prbotd, by route, method and status.",
	},
	[]string{"route", "method", "status"},
)

// httpRequestDuration tracks request latency by route.
var httpRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "prbot_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"route"},
)

// WebhookEventsTotal counts webhook deliveries by event name and whether
// dispatch succeeded, so operators can see delivery failures without
// grepping logs.
var WebhookEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "prbot_webhook_events_total",
		Help: "Webhook deliveries received, by event name and outcome.",
	},
	[]string{"event", "outcome"},
)

// CommandsTotal counts dispatched chat-ops commands by verb.
var CommandsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "prbot_commands_total",
		Help: "Chat-ops commands dispatched, by verb.",
	},
	[]string{"verb"},
)

// StatusEngineRunsTotal counts Engine.Run invocations by the step they
// resolved to, and separately by failure.
var StatusEngineRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "prbot_status_engine_runs_total",
		Help: "Status engine reconciliation runs, by resulting step or error.",
	},
	[]string{"result"},
)

// StatusEngineDuration tracks how long a reconciliation pass takes,
// including the forge round trips it makes.
var StatusEngineDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "prbot_status_engine_duration_seconds",
		Help:    "Status engine reconciliation duration.",
		Buckets: prometheus.DefBuckets,
	},
)

// MustRegister registers every collector with the default Prometheus
// registry. It panics on a duplicate registration, which can only happen if
// this is called more than once per process.
func MustRegister() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		WebhookEventsTotal,
		CommandsTotal,
		StatusEngineRunsTotal,
		StatusEngineDuration,
	)
}

// Handler serves the default Prometheus registry in the exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HTTPMiddleware records request count and latency for every request the
// router serves. It reads the chi route pattern after the handler runs so
// the route label stays low-cardinality even for parameterized paths.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := routePattern(r)
		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// statusWriter captures the status code a handler wrote so middleware can
// observe it after the fact.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
