// Package telemetry counts what the hub does: task dispatches and
// overruns, sensor reads and power mode changes. Nothing leaves the
// device; the console prints a Report on request.
package telemetry

import "sort"

// Collector receives events inline from the scheduler loop, so
// implementations must be cheap and must not block.
type Collector interface {
	TaskDispatched(task string)
	TaskOverrun(task string, tookMs uint32)
	SampleRead(subsystem string, ok bool)
	ModeChanged(from, to string)
}

// Stat is one named counter value.
type Stat struct {
	Name  string
	Value float64
}

// Reporter exposes current counter values, sorted by name.
type Reporter interface {
	Report() []Stat
}

type noopCollector struct{}

// Noop returns a collector that discards everything.
func Noop() Collector { return noopCollector{} }

func (noopCollector) TaskDispatched(string)      {}
func (noopCollector) TaskOverrun(string, uint32) {}
func (noopCollector) SampleRead(string, bool)    {}
func (noopCollector) ModeChanged(string, string) {}

// Counters is a map-backed collector for targets without Prometheus.
// It is owned by the scheduler goroutine.
type Counters struct {
	m map[string]float64
}

func NewCounters() *Counters { return &Counters{m: map[string]float64{}} }

func (c *Counters) inc(name string) { c.m[name]++ }

func (c *Counters) TaskDispatched(task string) { c.inc("task_dispatch{" + task + "}") }
func (c *Counters) TaskOverrun(task string, _ uint32) {
	c.inc("task_overrun{" + task + "}")
}
func (c *Counters) SampleRead(subsystem string, ok bool) {
	c.inc("sample_read{" + subsystem + "," + result(ok) + "}")
}
func (c *Counters) ModeChanged(_, to string) { c.inc("mode_change{" + to + "}") }

// Get returns a single counter, zero if never incremented.
func (c *Counters) Get(name string) float64 { return c.m[name] }

func (c *Counters) Report() []Stat {
	out := make([]Stat, 0, len(c.m))
	for k, v := range c.m {
		out = append(out, Stat{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
