// Package hub wires the sensor hub together: one explicit context object
// owning the scheduler, power manager, sensor subsystems and console.
package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"sensorhub-go/drivers/bme280"
	"sensorhub-go/drivers/lm75"
	"sensorhub-go/drivers/tsl2591"
	"sensorhub-go/errcode"
	"sensorhub-go/logx"
	"sensorhub-go/services/config"
	"sensorhub-go/services/console"
	"sensorhub-go/services/heartbeat"
	"sensorhub-go/services/hub/platform"
	"sensorhub-go/services/power"
	"sensorhub-go/services/sampling"
	"sensorhub-go/services/scheduler"
	"sensorhub-go/services/sensors"
	"sensorhub-go/services/sensors/env"
	"sensorhub-go/services/sensors/light"
	"sensorhub-go/services/sensors/temp"
	"sensorhub-go/services/telemetry"
	"sensorhub-go/types"
	"sensorhub-go/x/timex"
)

// Task names, in registration order.
const (
	TaskHeartbeat    = "Heartbeat"
	TaskSensorSample = "SensorSample"
	TaskPowerManager = "PowerManager"
	TaskCLI          = "CLI"
	TaskLightSample  = "LightSample"
	TaskEnvSample    = "EnvSample"
)

type Option func(*Hub)

func WithClock(c timex.Clock) Option { return func(h *Hub) { h.clock = c } }

func WithCollector(c telemetry.Collector) Option {
	return func(h *Hub) {
		if c != nil {
			h.tel = c
		}
	}
}

// WithSleep replaces time.Sleep in the superloop.
func WithSleep(f func(time.Duration)) Option { return func(h *Hub) { h.sleep = f } }

// WithBackends overrides the backends built from configuration. Nil
// entries keep the configured ones.
func WithBackends(
	tempSim, tempHW sensors.Backend[types.TemperatureSample],
	lightSim, lightHW sensors.Backend[types.LightSample],
	envSim, envHW sensors.Backend[types.EnvSample],
) Option {
	return func(h *Hub) {
		h.over = &overrides{tempSim, tempHW, lightSim, lightHW, envSim, envHW}
	}
}

type overrides struct {
	tempSim, tempHW   sensors.Backend[types.TemperatureSample]
	lightSim, lightHW sensors.Backend[types.LightSample]
	envSim, envHW     sensors.Backend[types.EnvSample]
}

type Hub struct {
	cfg      config.HubConfig
	backends config.Backends
	res      *platform.Resources
	clock    timex.Clock
	log      logx.Logger
	tel      telemetry.Collector
	sleep    func(time.Duration)
	over     *overrides

	sched   *scheduler.Scheduler
	power   *power.Manager
	beat    *heartbeat.Service
	console *console.Console

	temp  *sensors.Selector[types.TemperatureSample]
	light *sensors.Selector[types.LightSample]
	env   *sensors.Selector[types.EnvSample]

	tempSampler  *sampling.Sampler[types.TemperatureSample]
	lightSampler *sampling.Sampler[types.LightSample]
	envSampler   *sampling.Sampler[types.EnvSample]
}

// New validates cfg and builds every component. Only configuration
// problems are reported here; hardware is not touched until Init.
func New(cfg config.HubConfig, res *platform.Resources, log logx.Logger, opts ...Option) (*Hub, error) {
	backends, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &platform.Resources{}
	}
	h := &Hub{
		cfg:      cfg,
		backends: backends,
		res:      res,
		log:      logx.OrNop(log),
		tel:      telemetry.Noop(),
		sleep:    time.Sleep,
	}
	for _, o := range opts {
		o(h)
	}
	if h.clock == nil {
		h.clock = timex.System()
	}

	h.sched = scheduler.New(cfg.Scheduler.Capacity, h.clock,
		scheduler.WithLogger(logx.With(h.log, logx.F("component", "scheduler"))),
		scheduler.WithCollector(h.tel),
		scheduler.WithSleep(h.sleep))
	h.power = power.New(cfg.Power, logx.With(h.log, logx.F("component", "power")), h.tel)
	h.beat = heartbeat.New(res.LED, h.clock, logx.With(h.log, logx.F("component", "heartbeat")))

	h.buildSubsystems()

	var stats telemetry.Reporter
	if r, ok := h.tel.(telemetry.Reporter); ok {
		stats = r
	}
	h.console = console.New(console.Deps{
		Out:    res.Out,
		Power:  h.power,
		Tasks:  h.sched,
		Stats:  stats,
		Status: h.status,
		Log:    logx.With(h.log, logx.F("component", "console")),
		Clock:  h.clock,
	})
	return h, nil
}

func (h *Hub) buildSubsystems() {
	o := h.over
	if o == nil {
		o = &overrides{}
	}
	tempSim := orT(o.tempSim, sensors.Backend[types.TemperatureSample](temp.NewSim(h.clock)))
	tempHW := orT(o.tempHW, h.tempHardware())
	lightSim := orT(o.lightSim, sensors.Backend[types.LightSample](light.NewSim(h.clock)))
	lightHW := orT(o.lightHW, h.lightHardware())
	envSim := orT(o.envSim, sensors.Backend[types.EnvSample](env.NewSim(h.clock)))
	envHW := orT(o.envHW, h.envHardware())

	h.temp = sensors.NewSelector(string(types.KindTemperature), h.backends.Temperature, tempSim, tempHW, h.log)
	h.light = sensors.NewSelector(string(types.KindLight), h.backends.Light, lightSim, lightHW, h.log)
	h.env = sensors.NewSelector(string(types.KindEnv), h.backends.Env, envSim, envHW, h.log)

	h.tempSampler = sampling.New[types.TemperatureSample](string(types.KindTemperature), h.temp, h.power, h.clock,
		h.cfg.Temperature.Periods.Table(), h.log, sampling.FormatTemperature,
		sampling.WithCollector[types.TemperatureSample](h.tel))
	h.lightSampler = sampling.New[types.LightSample](string(types.KindLight), h.light, h.power, h.clock,
		h.cfg.Light.Periods.Table(), h.log, sampling.FormatLight,
		sampling.WithCollector[types.LightSample](h.tel))
	h.envSampler = sampling.New[types.EnvSample](string(types.KindEnv), h.env, h.power, h.clock,
		h.cfg.Env.Periods.Table(), h.log, sampling.FormatEnv,
		sampling.WithCollector[types.EnvSample](h.tel))
}

func orT[T any](override, def sensors.Backend[T]) sensors.Backend[T] {
	if override != nil {
		return override
	}
	return def
}

func missingBus[T any](bus string) sensors.Backend[T] {
	err := errcode.Wrap(errcode.Unsupported, "no "+bus+" bus", nil)
	return sensors.BackendFuncs[T]{
		InitFunc: func() error { return err },
		ReadFunc: func(*T) error { return err },
	}
}

func (h *Hub) tempHardware() sensors.Backend[types.TemperatureSample] {
	if h.res.I2C == nil {
		return missingBus[types.TemperatureSample]("i2c")
	}
	return temp.NewHW(h.res.I2C, lm75.Config{}, h.clock)
}

func (h *Hub) lightHardware() sensors.Backend[types.LightSample] {
	if h.res.I2C == nil {
		return missingBus[types.LightSample]("i2c")
	}
	cfg := light.DefaultHWConfig()
	cfg.IntegrationTime = tsl2591.IntegrationTime(h.cfg.LightSensor.IntegrationTime)
	cfg.Gain = tsl2591.Gain(h.cfg.LightSensor.Gain)
	return light.NewHW(h.res.I2C, cfg, h.clock)
}

func (h *Hub) envHardware() sensors.Backend[types.EnvSample] {
	if h.res.SPI == nil {
		return missingBus[types.EnvSample]("spi")
	}
	return env.NewHW(h.res.SPI, h.res.ChipSelect, bme280.Config{}, h.clock)
}

// Init brings the hub up. Subsystem failures are logged and leave that
// subsystem degraded; task registration failures are logged and startup
// continues. Init itself does not fail once New has succeeded.
func (h *Hub) Init() error {
	h.power.Init()
	h.sched.Init()

	for _, s := range []interface {
		Init() error
		Name() string
	}{h.temp, h.light, h.env} {
		if err := s.Init(); err != nil {
			h.log.Log(logx.Error, "subsystem degraded", logx.F("subsystem", s.Name()), logx.F("err", err))
		}
	}

	tasks := []scheduler.Task{
		{Name: TaskHeartbeat, Run: h.beat.Tick, PeriodMs: h.cfg.Tasks.HeartbeatMs},
		{Name: TaskSensorSample, Run: h.tempSampler.Task(), PeriodMs: h.cfg.Temperature.TaskPeriodMs},
		{Name: TaskPowerManager, Run: h.power.Update, PeriodMs: h.cfg.Tasks.PowerMs},
		{Name: TaskCLI, Run: h.console.Poll, PeriodMs: h.cfg.Tasks.CLIMs},
		{Name: TaskLightSample, Run: h.lightSampler.Task(), PeriodMs: h.cfg.Light.TaskPeriodMs},
		{Name: TaskEnvSample, Run: h.envSampler.Task(), PeriodMs: h.cfg.Env.TaskPeriodMs},
	}
	for _, t := range tasks {
		if err := h.sched.Register(t); err != nil {
			h.log.Log(logx.Error, "task registration failed", logx.F("task", t.Name), logx.F("err", err))
		}
	}
	h.log.Log(logx.Info, "sensor hub started",
		logx.F("profile", h.cfg.Profile),
		logx.F("tasks", h.sched.Len()),
		logx.F("temperature", h.backends.Temperature.String()),
		logx.F("light", h.backends.Light.String()),
		logx.F("env", h.backends.Env.String()))
	return nil
}

// RunOnce makes one scheduler pass.
func (h *Hub) RunOnce() int { return h.sched.RunOnce() }

// Run starts the console reader, if the platform has one, and runs the
// superloop until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	switch {
	case h.res.Pump != nil:
		go h.res.Pump(ctx, func(b []byte) { h.console.Feed(b) })
	case h.res.In != nil:
		go func() {
			err := h.console.Pump(ctx, h.res.In)
			if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
				h.log.Log(logx.Warn, "console input closed", logx.F("err", err))
			}
		}()
	}
	idle := time.Duration(h.cfg.Scheduler.IdleMs) * time.Millisecond
	return h.sched.Run(ctx, idle)
}

func (h *Hub) Scheduler() *scheduler.Scheduler { return h.sched }
func (h *Hub) Power() *power.Manager           { return h.power }
func (h *Hub) Console() *console.Console       { return h.console }

func (h *Hub) status() []console.Subsystem {
	out := []console.Subsystem{
		{Name: string(types.KindTemperature), Backend: h.temp.Kind().String(), Active: h.temp.Active()},
		{Name: string(types.KindLight), Backend: h.light.Kind().String(), Active: h.light.Active()},
		{Name: string(types.KindEnv), Backend: h.env.Kind().String(), Active: h.env.Active()},
	}
	if s, ok := h.tempSampler.Latest(); ok {
		out[0].Last = f32(s.Celsius) + "C@" + strconv.FormatUint(uint64(s.TimestampMs), 10)
	}
	if s, ok := h.lightSampler.Latest(); ok {
		out[1].Last = f32(s.Lux) + "lx@" + strconv.FormatUint(uint64(s.TimestampMs), 10)
	}
	if s, ok := h.envSampler.Latest(); ok {
		out[2].Last = fmt.Sprintf("%sC/%sPa/%s%%@%d",
			f32(s.TemperatureC), f32(s.PressurePa), f32(s.HumidityRH), s.TimestampMs)
	}
	return out
}

func f32(v float32) string { return strconv.FormatFloat(float64(v), 'f', 2, 32) }
