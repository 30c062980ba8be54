//go:build !(rp2040 || rp2350)

package telemetry

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// PrometheusCollector keeps the hub counters in a Prometheus registry.
type PrometheusCollector struct {
	gatherer prometheus.Gatherer

	dispatched  *prometheus.CounterVec
	overruns    *prometheus.CounterVec
	overrunMs   *prometheus.GaugeVec
	reads       *prometheus.CounterVec
	modeChanges *prometheus.CounterVec
	mode        *prometheus.GaugeVec
}

// NewPrometheusCollector registers the hub metrics with reg. Metrics that
// are already registered are reused. Report works when reg is also a
// Gatherer, as *prometheus.Registry is.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &PrometheusCollector{}
	if g, ok := reg.(prometheus.Gatherer); ok {
		p.gatherer = g
	}
	var err error
	if p.dispatched, err = registerVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sensorhub_task_dispatch_total",
		Help: "Number of times each scheduler task was dispatched.",
	}, []string{"task"})); err != nil {
		return nil, err
	}
	if p.overruns, err = registerVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sensorhub_task_overrun_total",
		Help: "Number of task runs that took longer than the task period.",
	}, []string{"task"})); err != nil {
		return nil, err
	}
	if p.overrunMs, err = registerVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sensorhub_task_last_overrun_ms",
		Help: "Duration of the most recent overrunning run per task.",
	}, []string{"task"})); err != nil {
		return nil, err
	}
	if p.reads, err = registerVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sensorhub_sample_read_total",
		Help: "Sensor reads per subsystem and result.",
	}, []string{"subsystem", "result"})); err != nil {
		return nil, err
	}
	if p.modeChanges, err = registerVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sensorhub_power_mode_change_total",
		Help: "Power mode transitions per target mode.",
	}, []string{"to"})); err != nil {
		return nil, err
	}
	if p.mode, err = registerVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sensorhub_power_mode",
		Help: "1 for the current power mode, 0 otherwise.",
	}, []string{"mode"})); err != nil {
		return nil, err
	}
	return p, nil
}

func registerVec[V prometheus.Collector](reg prometheus.Registerer, c V) (V, error) {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(V); ok {
				return existing, nil
			}
		}
		var zero V
		return zero, err
	}
	return c, nil
}

func (p *PrometheusCollector) TaskDispatched(task string) {
	if p == nil {
		return
	}
	p.dispatched.WithLabelValues(task).Inc()
}

func (p *PrometheusCollector) TaskOverrun(task string, tookMs uint32) {
	if p == nil {
		return
	}
	p.overruns.WithLabelValues(task).Inc()
	p.overrunMs.WithLabelValues(task).Set(float64(tookMs))
}

func (p *PrometheusCollector) SampleRead(subsystem string, ok bool) {
	if p == nil {
		return
	}
	p.reads.WithLabelValues(subsystem, result(ok)).Inc()
}

func (p *PrometheusCollector) ModeChanged(from, to string) {
	if p == nil {
		return
	}
	p.modeChanges.WithLabelValues(to).Inc()
	if from != "" {
		p.mode.WithLabelValues(from).Set(0)
	}
	p.mode.WithLabelValues(to).Set(1)
}

// Report flattens the gathered metric families into name{labels} stats.
func (p *PrometheusCollector) Report() []Stat {
	if p == nil || p.gatherer == nil {
		return nil
	}
	mfs, err := p.gatherer.Gather()
	if err != nil {
		return nil
	}
	var out []Stat
	for _, mf := range mfs {
		if !strings.HasPrefix(mf.GetName(), "sensorhub_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			out = append(out, Stat{Name: statName(mf.GetName(), m), Value: metricValue(m)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func statName(family string, m *dto.Metric) string {
	labels := m.GetLabel()
	if len(labels) == 0 {
		return family
	}
	var b strings.Builder
	b.WriteString(family)
	b.WriteByte('{')
	for i, l := range labels {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(l.GetName())
		b.WriteByte('=')
		b.WriteString(l.GetValue())
	}
	b.WriteByte('}')
	return b.String()
}

func metricValue(m *dto.Metric) float64 {
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	}
	return 0
}
