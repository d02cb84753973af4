package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds all Prometheus metrics of the service.
type Metrics struct {
	// Registry owns these metrics; the /metrics endpoint serves it.
	Registry *prometheus.Registry

	requestDuration   *prometheus.HistogramVec
	paymentsRecorded  *prometheus.CounterVec
	paymentAmount     *prometheus.CounterVec
	membersCreated    *prometheus.CounterVec
	partialWrites     prometheus.Counter
	reconciledMembers prometheus.Counter
	cacheRequests     *prometheus.CounterVec
	breakerState      *prometheus.GaugeVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it, so calling it more than once (e.g. in tests)
// never panics with duplicate collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lendtrack_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		paymentsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lendtrack_payments_recorded_total",
				Help: "Total repayments recorded.",
			},
			[]string{"collection_type"},
		),
		paymentAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lendtrack_payment_amount_total",
				Help: "Sum of repayment amounts recorded.",
			},
			[]string{"collection_type"},
		),
		membersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lendtrack_members_created_total",
				Help: "Total members registered.",
			},
			[]string{"collection_type"},
		),
		partialWrites: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lendtrack_partial_writes_total",
				Help: "Multi-step writes that failed after their first step was applied.",
			},
		),
		reconciledMembers: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lendtrack_reconciled_members_total",
				Help: "Members whose stored balance was corrected from the ledger.",
			},
		),
		cacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lendtrack_cache_requests_total",
				Help: "Dashboard cache lookups by result.",
			},
			[]string{"result"},
		),
		breakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lendtrack_circuit_breaker_open",
				Help: "1 while the named circuit breaker is open.",
			},
			[]string{"name"},
		),
	}
}

// RecordRequestDuration records the duration of an HTTP request.
func (m *Metrics) RecordRequestDuration(method, route, status string, d time.Duration) {
	m.requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// RecordPayment counts a repayment and its amount.
func (m *Metrics) RecordPayment(collectionType string, amount decimal.Decimal) {
	m.paymentsRecorded.WithLabelValues(collectionType).Inc()
	m.paymentAmount.WithLabelValues(collectionType).Add(amount.InexactFloat64())
}

// IncrMemberCreated counts a new member.
func (m *Metrics) IncrMemberCreated(collectionType string) {
	m.membersCreated.WithLabelValues(collectionType).Inc()
}

// IncrPartialWrite counts a partially applied write.
func (m *Metrics) IncrPartialWrite() {
	m.partialWrites.Inc()
}

// AddReconciled counts members corrected by reconciliation.
func (m *Metrics) AddReconciled(n int) {
	m.reconciledMembers.Add(float64(n))
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit() {
	m.cacheRequests.WithLabelValues("hit").Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss() {
	m.cacheRequests.WithLabelValues("miss").Inc()
}

// IncrCacheError increments the cache error counter.
func (m *Metrics) IncrCacheError() {
	m.cacheRequests.WithLabelValues("error").Inc()
}

// SetBreakerOpen records whether the named circuit breaker is open.
func (m *Metrics) SetBreakerOpen(name string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	m.breakerState.WithLabelValues(name).Set(v)
}
