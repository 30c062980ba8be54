// Package sampling runs a sensor read at a cadence chosen by the current
// power mode.
package sampling

import (
	"sensorhub-go/logx"
	"sensorhub-go/services/telemetry"
	"sensorhub-go/types"
	"sensorhub-go/x/timex"
)

// PeriodTable maps each power mode to a sampling period in ms.
// Zero disables sampling in that mode.
type PeriodTable [types.NumPowerModes]uint32

// For returns the period for mode; invalid modes are disabled.
func (t PeriodTable) For(mode types.PowerMode) uint32 {
	if !mode.Valid() {
		return 0
	}
	return t[mode]
}

var (
	TemperaturePeriods = PeriodTable{1000, 5000, 30000, 0}
	LightPeriods       = PeriodTable{1000, 5000, 30000, 0}
	EnvPeriods         = PeriodTable{2000, 10000, 60000, 0}
)

// Reader is the part of a sensor selector a sampler needs.
type Reader[T any] interface {
	Read(out *T) error
}

// ModeSource reports the current power mode without side effects.
type ModeSource interface {
	CurrentMode() types.PowerMode
}

// Outcome is what one Step did.
type Outcome uint8

const (
	Disabled Outcome = iota
	NotDue
	Sampled
	ReadFailed
)

func (o Outcome) String() string {
	switch o {
	case Disabled:
		return "disabled"
	case NotDue:
		return "not_due"
	case Sampled:
		return "sampled"
	case ReadFailed:
		return "read_failed"
	}
	return "unknown"
}

// Format turns a sample into log fields.
type Format[T any] func(s *T) []logx.Field

type Option[T any] func(*Sampler[T])

func WithCollector[T any](c telemetry.Collector) Option[T] {
	return func(s *Sampler[T]) {
		if c != nil {
			s.tel = c
		}
	}
}

// WithSink receives every successful sample after it is logged.
func WithSink[T any](f func(T)) Option[T] { return func(s *Sampler[T]) { s.sink = f } }

// Sampler is owned by the scheduler goroutine.
type Sampler[T any] struct {
	name    string
	reader  Reader[T]
	power   ModeSource
	clock   timex.Clock
	periods PeriodTable
	log     logx.Logger
	format  Format[T]
	tel     telemetry.Collector
	sink    func(T)

	last   uint32
	sample T
	have   bool
}

func New[T any](name string, reader Reader[T], power ModeSource, clock timex.Clock,
	periods PeriodTable, log logx.Logger, format Format[T], opts ...Option[T]) *Sampler[T] {
	s := &Sampler[T]{
		name:    name,
		reader:  reader,
		power:   power,
		clock:   clock,
		periods: periods,
		log:     logx.With(logx.OrNop(log), logx.F("subsystem", name)),
		format:  format,
		tel:     telemetry.Noop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Sampler[T]) Name() string { return s.name }

// LastSampleMs is the time of the last attempted read, 0 before the first.
func (s *Sampler[T]) LastSampleMs() uint32 { return s.last }

// Latest returns the most recent successful sample.
func (s *Sampler[T]) Latest() (T, bool) { return s.sample, s.have }

// Step is the task body: it reads at most once, only when the mode's
// period has elapsed since the last attempt.
func (s *Sampler[T]) Step() Outcome {
	mode := s.power.CurrentMode()
	period := s.periods.For(mode)
	if period == 0 {
		s.log.Log(logx.Debug, "sampling disabled", logx.F("mode", mode.String()))
		return Disabled
	}
	now := s.clock.NowMs()
	if timex.Elapsed(now, s.last) < period {
		return NotDue
	}
	s.last = now

	var v T
	if err := s.reader.Read(&v); err != nil {
		s.tel.SampleRead(s.name, false)
		s.log.Log(logx.Warn, "sensor read failed", logx.F("mode", mode.String()), logx.F("err", err))
		return ReadFailed
	}
	s.sample, s.have = v, true
	s.tel.SampleRead(s.name, true)

	fields := []logx.Field{logx.F("mode", mode.String())}
	if s.format != nil {
		fields = append(s.format(&v), fields...)
	}
	s.log.Log(logx.Info, "sample", fields...)
	if s.sink != nil {
		s.sink(v)
	}
	return Sampled
}

// Task adapts Step to a scheduler task body.
func (s *Sampler[T]) Task() func() { return func() { s.Step() } }

// Formats for the hub's sample types.

func FormatTemperature(s *types.TemperatureSample) []logx.Field {
	return []logx.Field{logx.F("celsius", s.Celsius), logx.F("ts_ms", s.TimestampMs)}
}

func FormatLight(s *types.LightSample) []logx.Field {
	return []logx.Field{
		logx.F("lux", s.Lux), logx.F("full", s.Full), logx.F("ir", s.IR), logx.F("ts_ms", s.TimestampMs),
	}
}

func FormatEnv(s *types.EnvSample) []logx.Field {
	return []logx.Field{
		logx.F("celsius", s.TemperatureC), logx.F("pressure_pa", s.PressurePa),
		logx.F("humidity_rh", s.HumidityRH), logx.F("ts_ms", s.TimestampMs),
	}
}
