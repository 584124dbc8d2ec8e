package monitoring

import (
	"encoding/json"
	"io"
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

const (
	MetricAssessRequests = "assess.requests"
	MetricAssessErrors   = "assess.errors"
	MetricCacheHits      = "assess.cache_hits"
	MetricAtRisk         = "assess.at_risk"
	MetricAssessLatency  = "assess.latency"
	MetricFetchDuration  = "provision.fetch"
	MetricFetchedBytes   = "provision.bytes"
)

// Metrics 指标收集器
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry  metrics.Registry
	startTime time.Time

	requests  metrics.Counter
	errors    metrics.Counter
	cacheHits metrics.Counter
	atRisk    metrics.Counter
	latency   metrics.Timer
	fetch     metrics.Timer
	fetched   metrics.Gauge
}

// NewMetrics 创建指标收集器
func NewMetrics() *Metrics {
	r := metrics.NewRegistry()
	return &Metrics{
		registry:  r,
		startTime: time.Now(),
		requests:  metrics.GetOrRegisterCounter(MetricAssessRequests, r),
		errors:    metrics.GetOrRegisterCounter(MetricAssessErrors, r),
		cacheHits: metrics.GetOrRegisterCounter(MetricCacheHits, r),
		atRisk:    metrics.GetOrRegisterCounter(MetricAtRisk, r),
		latency:   metrics.GetOrRegisterTimer(MetricAssessLatency, r),
		fetch:     metrics.GetOrRegisterTimer(MetricFetchDuration, r),
		fetched:   metrics.GetOrRegisterGauge(MetricFetchedBytes, r),
	}
}

// ObserveAssessment 记录一次成功的评估
func (m *Metrics) ObserveAssessment(start time.Time, atRisk, cached bool) {
	if m == nil {
		return
	}
	m.requests.Inc(1)
	m.latency.UpdateSince(start)
	if atRisk {
		m.atRisk.Inc(1)
	}
	if cached {
		m.cacheHits.Inc(1)
	}
}

// ObserveFailure 记录一次失败的评估
func (m *Metrics) ObserveFailure() {
	if m == nil {
		return
	}
	m.requests.Inc(1)
	m.errors.Inc(1)
}

// ObserveFetch 记录模型下载
func (m *Metrics) ObserveFetch(start time.Time, bytes int64) {
	if m == nil {
		return
	}
	m.fetch.UpdateSince(start)
	m.fetched.Update(bytes)
}

// Count returns the current value of a registered counter, or 0.
func (m *Metrics) Count(name string) int64 {
	if m == nil {
		return 0
	}
	if c, ok := m.registry.Get(name).(metrics.Counter); ok {
		return c.Count()
	}
	return 0
}

// Snapshot 获取所有指标
func (m *Metrics) Snapshot() map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	snapshot := make(map[string]interface{})
	for name, values := range m.registry.GetAll() {
		snapshot[name] = values
	}
	snapshot["uptime_seconds"] = time.Since(m.startTime).Seconds()
	return snapshot
}

func (m *Metrics) WriteJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(m.Snapshot())
}
