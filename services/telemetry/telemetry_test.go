package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopCollector(t *testing.T) {
	c := Noop()
	require.NotNil(t, c)
	c.TaskDispatched("Heartbeat")
	c.ModeChanged("ACTIVE", "IDLE")
}

func TestCountersReportSorted(t *testing.T) {
	c := NewCounters()
	c.TaskDispatched("Heartbeat")
	c.TaskDispatched("Heartbeat")
	c.SampleRead("light", false)
	c.ModeChanged("ACTIVE", "IDLE")

	assert.Equal(t, 2.0, c.Get("task_dispatch{Heartbeat}"))
	assert.Equal(t, []Stat{
		{Name: "mode_change{IDLE}", Value: 1},
		{Name: "sample_read{light,failed}", Value: 1},
		{Name: "task_dispatch{Heartbeat}", Value: 2},
	}, c.Report())
}
