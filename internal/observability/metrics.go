package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Transport collectors. The route label is the registered gin route, or
// "unmatched" when no route handled the request.
var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route, and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds by method and route.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	HTTPInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "HTTP requests currently being served.",
		},
	)

	// HTTPResponseSize buckets span small JSON envelopes up to 1MiB pages.
	HTTPResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response body size in bytes by route.",
			Buckets: prometheus.ExponentialBuckets(128, 4, 8),
		},
		[]string{"route"},
	)

	// HTTPRejections counts requests turned away by guard middleware, by
	// route group (admin|public) and reason
	// (unauthorized|forbidden|rate_limited|bad_idempotency_key).
	HTTPRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certified_http_rejections_total",
			Help: "Requests rejected before reaching a handler, by group and reason.",
		},
		[]string{"group", "reason"},
	)
)

// Domain collectors. Label values are small closed sets so cardinality stays
// bounded regardless of traffic.
var (
	// ProposerRuns counts proposer executions by engine and outcome
	// (ok|failed|timeout|invalid).
	ProposerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certified_proposals_total",
			Help: "Proposer executions by engine and outcome.",
		},
		[]string{"engine", "outcome"},
	)

	// ProposerLatency observes proposer wall time in seconds.
	ProposerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "certified_proposer_duration_seconds",
			Help:    "Duration of proposer executions in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"engine"},
	)

	// CitationProbes counts citation probes by outcome
	// (reachable|unreachable|invalid|cached).
	CitationProbes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certified_citation_probes_total",
			Help: "Citation reachability probes by outcome.",
		},
		[]string{"outcome"},
	)

	// CheckerDecisions counts checker runs by whether a proposal was selected.
	CheckerDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certified_checker_decisions_total",
			Help: "Checker decisions by result (selected|no_valid_proposals).",
		},
		[]string{"result"},
	)

	// PublishOutcomes counts publish attempts by outcome.
	PublishOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certified_publish_total",
			Help: "Publish attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// VerifyOutcomes counts verification requests by mode and result.
	VerifyOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certified_verify_total",
			Help: "Verification requests by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		HTTPDuration,
		HTTPInflight,
		HTTPResponseSize,
		HTTPRejections,
		ProposerRuns,
		ProposerLatency,
		CitationProbes,
		CheckerDecisions,
		PublishOutcomes,
		VerifyOutcomes,
	)
}
