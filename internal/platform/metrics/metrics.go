package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the workflow engine.
type Metrics struct {
	Registrations      prometheus.Counter
	CodesIssued        prometheus.Counter
	CodeSubmissions    *prometheus.CounterVec
	DocumentsSubmitted prometheus.Counter
	DocumentDecisions  *prometheus.CounterVec
	Approvals          prometheus.Counter
	AccountActions     *prometheus.CounterVec
	CASConflicts       *prometheus.CounterVec
	ReviewQueueDepth   prometheus.Gauge
	PollerTicks        *prometheus.CounterVec
	EndpointLatency    *prometheus.HistogramVec
}

// New creates and registers all metrics with reg. Pass prometheus.DefaultRegisterer
// in main and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Name: "assist_registrations_total",
			Help: "Total number of applicant registrations",
		}),
		CodesIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "assist_verification_codes_issued_total",
			Help: "Total number of verification codes issued by reviewers",
		}),
		CodeSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_verification_code_submissions_total",
			Help: "Verification code submissions by result",
		}, []string{"result"}),
		DocumentsSubmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "assist_documents_submitted_total",
			Help: "Total number of documents submitted",
		}),
		DocumentDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_document_decisions_total",
			Help: "Document review decisions by outcome",
		}, []string{"decision"}),
		Approvals: f.NewCounter(prometheus.CounterOpts{
			Name: "assist_applicants_approved_total",
			Help: "Total number of applicants approved for assistance",
		}),
		AccountActions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_account_actions_total",
			Help: "Reviewer account actions by kind",
		}, []string{"action"}),
		CASConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_cas_conflicts_total",
			Help: "Compare-and-swap conflicts by record kind",
		}, []string{"record"}),
		ReviewQueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "assist_review_queue_depth",
			Help: "Documents waiting for review as of the last observation",
		}),
		PollerTicks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_poller_ticks_total",
			Help: "Poller ticks by watcher and outcome",
		}, []string{"watcher", "outcome"}),
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assist_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveLatency records one request duration for route.
func (m *Metrics) ObserveLatency(route string, d time.Duration) {
	m.EndpointLatency.WithLabelValues(route).Observe(d.Seconds())
}
