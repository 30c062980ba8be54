package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensorhub-go/services/scheduler"
	"sensorhub-go/services/telemetry"
	"sensorhub-go/types"
	"sensorhub-go/x/timex"
)

type fakePower struct {
	mode      types.PowerMode
	requested []types.PowerMode
	activity  int
}

func (f *fakePower) CurrentMode() types.PowerMode { return f.mode }
func (f *fakePower) IdleCycles() uint32           { return 3 }
func (f *fakePower) NoteActivity()                { f.activity++ }
func (f *fakePower) Request(m types.PowerMode) error {
	f.requested = append(f.requested, m)
	return nil
}

type fakeTasks []scheduler.TaskInfo

func (f fakeTasks) Tasks() []scheduler.TaskInfo { return f }

func newConsole() (*Console, *bytes.Buffer, *fakePower) {
	out := &bytes.Buffer{}
	p := &fakePower{}
	c := New(Deps{
		Out:   out,
		Power: p,
		Tasks: fakeTasks{{Name: "Heartbeat", PeriodMs: 500, LastRunMs: 1500, Runs: 3}},
		Status: func() []Subsystem {
			return []Subsystem{{Name: "light", Backend: "sim", Active: true, Last: "lux=450"}}
		},
		Clock: &timex.Manual{Ms: 4200},
	})
	return c, out, p
}

func TestModeCommandRequestsAndCountsActivity(t *testing.T) {
	c, out, p := newConsole()
	c.Feed([]byte("mode sleep\r\n"))
	c.Poll()

	assert.Equal(t, []types.PowerMode{types.PowerSleep}, p.requested)
	assert.Equal(t, 1, p.activity)
	assert.Contains(t, out.String(), "ok: SLEEP requested")
}

func TestModeRejectsUnknown(t *testing.T) {
	c, out, p := newConsole()
	c.Exec("mode turbo")
	assert.Empty(t, p.requested)
	assert.Contains(t, out.String(), "invalid mode turbo")

	out.Reset()
	c.Exec("mode")
	assert.Contains(t, out.String(), "usage:")
}

func TestStatusListsSubsystems(t *testing.T) {
	c, out, _ := newConsole()
	c.Exec("status")
	s := out.String()
	assert.Contains(t, s, "uptime_ms=4200")
	assert.Contains(t, s, "mode=ACTIVE idle_cycles=3")
	assert.Contains(t, s, "light backend=sim active=true last=lux=450")
}

func TestTasksCommand(t *testing.T) {
	c, out, _ := newConsole()
	c.Exec("tasks")
	assert.Contains(t, out.String(), "Heartbeat period_ms=500 last_ms=1500 runs=3 overruns=0")
}

func TestStatsWithoutReporter(t *testing.T) {
	c, out, _ := newConsole()
	c.Exec("stats")
	assert.Contains(t, out.String(), "no stats")
}

func TestStatsPrintsReport(t *testing.T) {
	tel := telemetry.NewCounters()
	tel.TaskDispatched("CLI")
	out := &bytes.Buffer{}
	c := New(Deps{Out: out, Stats: tel})
	c.Exec("stats")
	assert.Contains(t, out.String(), "task_dispatch{CLI} 1")
}

func TestLineAssemblyAcrossPolls(t *testing.T) {
	c, out, p := newConsole()
	c.Feed([]byte("he"))
	c.Poll()
	assert.Empty(t, out.String())
	c.Feed([]byte("lpx\x7f\n"))
	c.Poll()
	assert.Contains(t, out.String(), "commands:")
	assert.Equal(t, 1, p.activity)
}

func TestQuotedArgumentsAndUnknownCommand(t *testing.T) {
	c, out, _ := newConsole()
	c.Exec(`frobnicate "a b"`)
	assert.Contains(t, out.String(), "unknown command: frobnicate")

	out.Reset()
	c.Exec(`mode "unterminated`)
	assert.Contains(t, out.String(), "error:")
}

func TestOverlongLineIsRejected(t *testing.T) {
	c, out, p := newConsole()
	c.Feed([]byte(strings.Repeat("x", maxLine+10)))
	c.Poll()
	c.Feed([]byte("\n"))
	c.Poll()
	assert.Contains(t, out.String(), "line too long")
	assert.Zero(t, p.activity)
}

func TestBlankLinesAreIgnored(t *testing.T) {
	c, out, p := newConsole()
	c.Feed([]byte("\r\n\r\n"))
	c.Poll()
	assert.Empty(t, out.String())
	assert.Zero(t, p.activity)
}

func TestPumpFeedsUntilEOF(t *testing.T) {
	c, out, _ := newConsole()
	err := c.Pump(context.Background(), strings.NewReader("tasks\n"))
	require.True(t, errors.Is(err, io.EOF))
	c.Poll()
	assert.Contains(t, out.String(), "Heartbeat")
}
