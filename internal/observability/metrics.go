package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the bot.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Conversation metrics
	Replies          *prometheus.CounterVec
	DirectoryLookups *prometheus.CounterVec
	Completions      *prometheus.CounterVec
	LedgerEntries    prometheus.GaugeFunc
}

// NewCollector creates a collector on its own registry, so tests can build
// as many as they like. ledgerSize may be nil.
func NewCollector(namespace string, ledgerSize func() int) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Replies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bot_replies_total",
				Help:      "Webhook replies by membership tier and route taken",
			},
			[]string{"tier", "route"},
		),
		DirectoryLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "directory_lookups_total",
				Help:      "Directory lookups by outcome (match, miss, error)",
			},
			[]string{"outcome"},
		),
		Completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completions_total",
				Help:      "Completion calls by purpose and outcome (ok, degraded)",
			},
			[]string{"purpose", "outcome"},
		),
	}

	if ledgerSize == nil {
		ledgerSize = func() int { return 0 }
	}
	c.LedgerEntries = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_entries",
			Help:      "Identities currently tracked by the interaction ledger",
		},
		func() float64 { return float64(ledgerSize()) },
	)

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Replies,
		c.DirectoryLookups,
		c.Completions,
		c.LedgerEntries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Handler exposes the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route, status string, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) RecordReply(tier, route string) {
	c.Replies.WithLabelValues(tier, route).Inc()
}

func (c *Collector) RecordLookup(outcome string) {
	c.DirectoryLookups.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordCompletion(purpose, outcome string) {
	c.Completions.WithLabelValues(purpose, outcome).Inc()
}
