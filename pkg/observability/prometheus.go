package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements every hook interface on top of Prometheus
// collectors registered with a caller-supplied registry.
type PrometheusHooks struct {
	builds       *prometheus.HistogramVec
	layouts      *prometheus.HistogramVec
	applies      *prometheus.HistogramVec
	applyErrors  *prometheus.CounterVec
	drags        *prometheus.CounterVec
	storeOps     *prometheus.HistogramVec
	storeMisses  *prometheus.CounterVec
	storeErrors  *prometheus.CounterVec
	storeBytes   *prometheus.CounterVec
	rollbacks    *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
}

// NewPrometheusHooks creates the intentgraph collectors and registers them
// with reg. It panics if a collector is already registered, so call it once
// per registry.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		builds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intentgraph_build_duration_seconds",
			Help:    "Time spent building the intent forest from a tree",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"status"}),
		layouts: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intentgraph_layout_duration_seconds",
			Help:    "Time spent computing node positions",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}, []string{"orientation"}),
		applies: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intentgraph_apply_duration_seconds",
			Help:    "Time spent applying a reorganization or manual edit",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}, []string{"op"}),
		applyErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intentgraph_apply_errors_total",
			Help: "Rejected or failed reorganizations",
		}, []string{"op"}),
		drags: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intentgraph_drags_total",
			Help: "Finished drags by outcome",
		}, []string{"outcome"}),
		storeOps: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intentgraph_store_duration_seconds",
			Help:    "Persistence gateway latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "kind", "op"}),
		storeMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intentgraph_store_misses_total",
			Help: "Reads of absent keys",
		}, []string{"backend", "kind"}),
		storeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intentgraph_store_errors_total",
			Help: "Failed persistence gateway calls",
		}, []string{"backend", "kind", "op"}),
		storeBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intentgraph_store_written_bytes_total",
			Help: "Bytes written through the persistence gateway",
		}, []string{"backend", "kind"}),
		rollbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intentgraph_rollbacks_total",
			Help: "Published states restored after a failed save",
		}, []string{"backend"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intentgraph_http_requests_total",
			Help: "Outgoing HTTP requests",
		}, []string{"method", "host", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intentgraph_http_request_duration_seconds",
			Help:    "Outgoing HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "host"}),
		httpErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intentgraph_http_errors_total",
			Help: "Outgoing HTTP requests that failed before a response",
		}, []string{"method", "host"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *PrometheusHooks) OnBuild(_ context.Context, _ int, d time.Duration, err error) {
	p.builds.WithLabelValues(status(err)).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnLayout(_ context.Context, orientation string, _ int, d time.Duration) {
	p.layouts.WithLabelValues(orientation).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnApply(_ context.Context, op string, d time.Duration, err error) {
	p.applies.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		p.applyErrors.WithLabelValues(op).Inc()
	}
}

func (p *PrometheusHooks) OnDragEnd(_ context.Context, outcome string) {
	p.drags.WithLabelValues(outcome).Inc()
}

func (p *PrometheusHooks) OnLoad(_ context.Context, backend, kind string, hit bool, d time.Duration, err error) {
	p.storeOps.WithLabelValues(backend, kind, "load").Observe(d.Seconds())
	switch {
	case err != nil:
		p.storeErrors.WithLabelValues(backend, kind, "load").Inc()
	case !hit:
		p.storeMisses.WithLabelValues(backend, kind).Inc()
	}
}

func (p *PrometheusHooks) OnSave(_ context.Context, backend, kind string, size int, d time.Duration, err error) {
	p.storeOps.WithLabelValues(backend, kind, "save").Observe(d.Seconds())
	if err != nil {
		p.storeErrors.WithLabelValues(backend, kind, "save").Inc()
		return
	}
	p.storeBytes.WithLabelValues(backend, kind).Add(float64(size))
}

func (p *PrometheusHooks) OnRollback(_ context.Context, backend string) {
	p.rollbacks.WithLabelValues(backend).Inc()
}

func (p *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (p *PrometheusHooks) OnResponse(_ context.Context, method, host, _ string, code int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, host, httpClass(code)).Inc()
	p.httpDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnError(_ context.Context, method, host, _ string, _ error) {
	p.httpErrors.WithLabelValues(method, host).Inc()
}

// httpClass folds a status code into its class ("2xx", "5xx") to keep label
// cardinality bounded.
func httpClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	}
	return "other"
}

var (
	_ EngineHooks = (*PrometheusHooks)(nil)
	_ StoreHooks  = (*PrometheusHooks)(nil)
	_ HTTPHooks   = (*PrometheusHooks)(nil)
)
