// Package scheduler is the hub's cooperative task table.
//
// Tasks run to completion on the caller's goroutine. A task is due when
// at least its period has elapsed since it last ran; its timestamp is
// taken just before it is invoked, so a slow task does not drift the
// schedule of the tasks after it. The table is owned by one goroutine.
package scheduler

import (
	"context"
	"time"

	"sensorhub-go/errcode"
	"sensorhub-go/logx"
	"sensorhub-go/services/telemetry"
	"sensorhub-go/x/timex"
)

const DefaultCapacity = 8

var (
	ErrCapacityExceeded error = errcode.CapacityExceeded
	ErrInvalidPeriod    error = errcode.InvalidPeriod
	ErrInvalidTask      error = errcode.InvalidTask
)

// Task is a periodic job. LastRunMs is maintained by the scheduler.
type Task struct {
	Name      string
	Run       func()
	PeriodMs  uint32
	LastRunMs uint32
}

// TaskInfo is a read-only view of a registered task.
type TaskInfo struct {
	Name      string
	PeriodMs  uint32
	LastRunMs uint32
	Runs      uint32
	Overruns  uint32
}

type entry struct {
	Task
	runs     uint32
	overruns uint32
}

type Option func(*Scheduler)

func WithLogger(l logx.Logger) Option { return func(s *Scheduler) { s.log = logx.OrNop(l) } }

func WithCollector(c telemetry.Collector) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.tel = c
		}
	}
}

// WithSleep replaces time.Sleep in Run.
func WithSleep(f func(time.Duration)) Option { return func(s *Scheduler) { s.sleep = f } }

type Scheduler struct {
	clock timex.Clock
	tasks []entry
	log   logx.Logger
	tel   telemetry.Collector
	sleep func(time.Duration)
}

// New allocates a table for capacity tasks. capacity <= 0 selects
// DefaultCapacity.
func New(capacity int, clock timex.Clock, opts ...Option) *Scheduler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &Scheduler{
		clock: clock,
		tasks: make([]entry, 0, capacity),
		log:   logx.Nop(),
		tel:   telemetry.Noop(),
		sleep: time.Sleep,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Init empties the table.
func (s *Scheduler) Init() { s.tasks = s.tasks[:0] }

func (s *Scheduler) Capacity() int { return cap(s.tasks) }
func (s *Scheduler) Len() int      { return len(s.tasks) }

// Register appends t. Registration order is dispatch order. The task's
// period starts counting now, so it is not due on the next pass.
func (s *Scheduler) Register(t Task) error {
	if t.Run == nil {
		return ErrInvalidTask
	}
	if t.PeriodMs == 0 {
		return ErrInvalidPeriod
	}
	if len(s.tasks) == cap(s.tasks) {
		return ErrCapacityExceeded
	}
	t.LastRunMs = s.clock.NowMs()
	s.tasks = append(s.tasks, entry{Task: t})
	return nil
}

// RunOnce makes one pass over the table and returns how many tasks ran.
// Each task runs at most once per pass.
func (s *Scheduler) RunOnce() int {
	n := 0
	for i := range s.tasks {
		e := &s.tasks[i]
		now := s.clock.NowMs()
		if !timex.Due(now, e.LastRunMs, e.PeriodMs) {
			continue
		}
		e.LastRunMs = now
		e.Run()
		e.runs++
		n++
		s.tel.TaskDispatched(e.Name)

		if took := timex.Elapsed(s.clock.NowMs(), now); took > e.PeriodMs {
			e.overruns++
			s.tel.TaskOverrun(e.Name, took)
			s.log.Log(logx.Warn, "task overran its period",
				logx.F("task", e.Name), logx.F("took_ms", took), logx.F("period_ms", e.PeriodMs))
		}
	}
	return n
}

// Tasks returns a snapshot of the table in dispatch order.
func (s *Scheduler) Tasks() []TaskInfo {
	out := make([]TaskInfo, len(s.tasks))
	for i, e := range s.tasks {
		out[i] = TaskInfo{
			Name:      e.Name,
			PeriodMs:  e.PeriodMs,
			LastRunMs: e.LastRunMs,
			Runs:      e.runs,
			Overruns:  e.overruns,
		}
	}
	return out
}

// Run is the superloop: it calls RunOnce until ctx is done, sleeping
// idle between passes.
func (s *Scheduler) Run(ctx context.Context, idle time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.RunOnce()
		if idle > 0 {
			s.sleep(idle)
		}
	}
}
