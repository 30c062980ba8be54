// Package console is the operator's line-oriented command interface.
//
// Bytes are fed from a reader goroutine into a single-producer ring; the
// CLI task drains it without blocking, assembles lines and runs them.
// Every command counts as operator activity for the power manager.
package console

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"sensorhub-go/logx"
	"sensorhub-go/services/scheduler"
	"sensorhub-go/services/telemetry"
	"sensorhub-go/types"
	"sensorhub-go/x/ringbuf"
	"sensorhub-go/x/timex"
)

const (
	maxLine  = 128
	ringSize = 256
)

// Power is the slice of the power manager the console drives.
type Power interface {
	CurrentMode() types.PowerMode
	IdleCycles() uint32
	Request(mode types.PowerMode) error
	NoteActivity()
}

type TaskLister interface {
	Tasks() []scheduler.TaskInfo
}

// Subsystem is one line of the status report.
type Subsystem struct {
	Name    string
	Backend string
	Active  bool
	Last    string // formatted latest sample, empty if none yet
}

// Deps wires the console to the rest of the hub. Stats, Status, Log and
// Clock are optional.
type Deps struct {
	Out    io.Writer
	Power  Power
	Tasks  TaskLister
	Stats  telemetry.Reporter
	Status func() []Subsystem
	Log    logx.Logger
	Clock  timex.Clock
}

type Console struct {
	d    Deps
	log  logx.Logger
	in   *ringbuf.Ring
	line []byte
	over bool
	buf  [32]byte
}

func New(d Deps) *Console {
	if d.Out == nil {
		d.Out = io.Discard
	}
	return &Console{
		d:    d,
		log:  logx.OrNop(d.Log),
		in:   ringbuf.New(ringSize),
		line: make([]byte, 0, maxLine),
	}
}

// Feed queues received bytes. It is the only producer-side call and may
// run on another goroutine. Bytes that do not fit are dropped.
func (c *Console) Feed(p []byte) int { return c.in.Write(p) }

// Pump copies r into the console until ctx is done or r fails.
func (c *Console) Pump(ctx context.Context, r io.Reader) error {
	var buf [64]byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf[:])
		if n > 0 {
			c.Feed(buf[:n])
		}
		if err != nil {
			return err
		}
	}
}

// Poll is the task body: it drains pending input and runs complete lines.
func (c *Console) Poll() {
	for {
		n := c.in.Read(c.buf[:])
		if n == 0 {
			return
		}
		for _, b := range c.buf[:n] {
			c.input(b)
		}
	}
}

func (c *Console) input(b byte) {
	switch b {
	case '\r', '\n':
		if c.over {
			c.over = false
			c.line = c.line[:0]
			c.write("error: line too long\r\n")
			return
		}
		if len(c.line) == 0 {
			return
		}
		line := string(c.line)
		c.line = c.line[:0]
		c.Exec(line)
	case 0x08, 0x7F:
		if len(c.line) > 0 {
			c.line = c.line[:len(c.line)-1]
		}
	default:
		if len(c.line) == maxLine {
			c.over = true
			return
		}
		c.line = append(c.line, b)
	}
}

// Exec runs one command line.
func (c *Console) Exec(line string) {
	args, err := shlex.Split(line)
	if err != nil {
		c.write("error: " + err.Error() + "\r\n")
		return
	}
	if len(args) == 0 {
		return
	}
	if c.d.Power != nil {
		c.d.Power.NoteActivity()
	}
	c.log.Log(logx.Debug, "console command", logx.F("cmd", args[0]))

	switch strings.ToLower(args[0]) {
	case "help", "?":
		c.help()
	case "status":
		c.status()
	case "mode":
		c.mode(args[1:])
	case "tasks":
		c.tasks()
	case "stats":
		c.stats()
	default:
		c.write("unknown command: " + args[0] + " (try help)\r\n")
	}
}

func (c *Console) help() {
	c.write("commands:\r\n" +
		"  help                          this text\r\n" +
		"  status                        power mode and subsystems\r\n" +
		"  mode <active|idle|sleep|stop> request a power mode\r\n" +
		"  tasks                         scheduler table\r\n" +
		"  stats                         counters\r\n")
}

func (c *Console) status() {
	var b strings.Builder
	if c.d.Clock != nil {
		b.WriteString("uptime_ms=" + u32(c.d.Clock.NowMs()) + " ")
	}
	if c.d.Power != nil {
		b.WriteString("mode=" + c.d.Power.CurrentMode().String())
		b.WriteString(" idle_cycles=" + u32(c.d.Power.IdleCycles()))
	}
	b.WriteString("\r\n")
	if c.d.Status != nil {
		for _, s := range c.d.Status() {
			b.WriteString("  " + s.Name + " backend=" + s.Backend + " active=" + strconv.FormatBool(s.Active))
			if s.Last != "" {
				b.WriteString(" last=" + s.Last)
			}
			b.WriteString("\r\n")
		}
	}
	c.write(b.String())
}

func (c *Console) mode(args []string) {
	if len(args) != 1 {
		c.write("usage: mode <active|idle|sleep|stop>\r\n")
		return
	}
	m, ok := types.ParsePowerMode(args[0])
	if !ok || c.d.Power == nil {
		c.write("error: invalid mode " + args[0] + "\r\n")
		return
	}
	if err := c.d.Power.Request(m); err != nil {
		c.write("error: " + err.Error() + "\r\n")
		return
	}
	c.log.Log(logx.Info, "power mode requested", logx.F("mode", m.String()))
	c.write("ok: " + m.String() + " requested\r\n")
}

func (c *Console) tasks() {
	if c.d.Tasks == nil {
		return
	}
	var b strings.Builder
	for _, t := range c.d.Tasks.Tasks() {
		b.WriteString("  " + t.Name +
			" period_ms=" + u32(t.PeriodMs) +
			" last_ms=" + u32(t.LastRunMs) +
			" runs=" + u32(t.Runs) +
			" overruns=" + u32(t.Overruns) + "\r\n")
	}
	c.write(b.String())
}

func (c *Console) stats() {
	if c.d.Stats == nil {
		c.write("no stats\r\n")
		return
	}
	var b strings.Builder
	for _, s := range c.d.Stats.Report() {
		b.WriteString("  " + s.Name + " " + strconv.FormatFloat(s.Value, 'f', -1, 64) + "\r\n")
	}
	if dropped := c.in.Dropped(); dropped > 0 {
		b.WriteString("  console_rx_dropped " + u32(dropped) + "\r\n")
	}
	c.write(b.String())
}

func (c *Console) write(s string) {
	if _, err := io.WriteString(c.d.Out, s); err != nil {
		c.log.Log(logx.Warn, "console write failed", logx.F("err", err))
	}
}

func u32(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
