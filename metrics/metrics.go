// Package metrics provides Prometheus metrics for status updates, votes and
// the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/status"
)

var _ status.Recorder = (*Collector)(nil)

// Collector records metrics into a Prometheus registry.
type Collector struct {
	statusesAdded   *prometheus.CounterVec
	statusesDeleted prometheus.Counter
	votes           *prometheus.CounterVec
	requests        *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		statusesAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userstatus_statuses_added_total",
			Help: "Number of status updates posted.",
		}, []string{"kind"}),
		statusesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "userstatus_statuses_deleted_total",
			Help: "Number of status updates deleted.",
		}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userstatus_votes_total",
			Help: "Number of votes by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userstatus_http_requests_total",
			Help: "Number of HTTP requests by route and status code.",
		}, []string{"route", "status_code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "userstatus_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.statusesAdded,
		c.statusesDeleted,
		c.votes,
		c.requests,
		c.latency,
	)

	return c
}

// StatusAdded records a posted status update.
func (c *Collector) StatusAdded(network bool) {
	kind := "personal"
	if network {
		kind = "network"
	}
	c.statusesAdded.WithLabelValues(kind).Inc()
}

// StatusDeleted records a deleted status update.
func (c *Collector) StatusDeleted() {
	c.statusesDeleted.Inc()
}

// VoteCast records the outcome of a vote attempt.
func (c *Collector) VoteCast(outcome string) {
	c.votes.WithLabelValues(outcome).Inc()
}

// RecordRequest records a served HTTP request.
func (c *Collector) RecordRequest(route string, statusCode int, d time.Duration) {
	c.requests.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	c.latency.WithLabelValues(route).Observe(d.Seconds())
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
