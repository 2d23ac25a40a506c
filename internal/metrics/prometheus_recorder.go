package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	stageDuration     *prom.HistogramVec
	runDuration       prom.Histogram
	stageResults      *prom.CounterVec
	runOutcome        *prom.CounterVec
	documentsRendered prom.Counter
	actionsExecuted   prom.Counter
	delegateRequests  prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual generation stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "run_duration_seconds",
			Help:      "Total generation run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"})
		pr.documentsRendered = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "documents_rendered_total",
			Help:      "Content documents rendered to HTML",
		})
		pr.actionsExecuted = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "fs_actions_executed_total",
			Help:      "Filesystem actions applied",
		})
		pr.delegateRequests = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "delegate_requests_total",
			Help:      "Requests sent to the delegate subprocess",
		})
		reg.MustRegister(pr.stageDuration, pr.runDuration, pr.stageResults, pr.runOutcome,
			pr.documentsRendered, pr.actionsExecuted, pr.delegateRequests)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddDocumentsRendered(n int) {
	if p == nil || p.documentsRendered == nil {
		return
	}
	p.documentsRendered.Add(float64(n))
}

func (p *PrometheusRecorder) AddActionsExecuted(n int) {
	if p == nil || p.actionsExecuted == nil {
		return
	}
	p.actionsExecuted.Add(float64(n))
}

func (p *PrometheusRecorder) IncDelegateRequests() {
	if p == nil || p.delegateRequests == nil {
		return
	}
	p.delegateRequests.Inc()
}
