// Package config holds the hub's startup configuration.
//
// Profiles are compiled in as Go values so the firmware needs no parser;
// host builds may overlay a file on top of a profile (see LoadFile).
// Every configuration problem is reported as ErrConfig.
package config

import (
	"fmt"

	"sensorhub-go/drivers/tsl2591"
	"sensorhub-go/errcode"
	"sensorhub-go/logx"
	"sensorhub-go/services/power"
	"sensorhub-go/services/sampling"
	"sensorhub-go/types"
)

var ErrConfig error = errcode.Config

// Selection picks a subsystem backend. Backend takes "sim" or "hw"; the
// UseSim/UseHW pair is the older form where exactly one flag must be set.
// When both forms are given they must agree.
type Selection struct {
	Backend string `mapstructure:"backend"`
	UseSim  bool   `mapstructure:"use_sim"`
	UseHW   bool   `mapstructure:"use_hw"`
}

// Resolve returns the selected backend kind.
func (s Selection) Resolve() (types.BackendKind, error) {
	var fromFlags types.BackendKind
	switch {
	case s.UseSim && s.UseHW:
		return types.BackendUnset, fmt.Errorf("both use_sim and use_hw set: %w", ErrConfig)
	case s.UseSim:
		fromFlags = types.BackendSim
	case s.UseHW:
		fromFlags = types.BackendHW
	}
	if s.Backend == "" {
		if fromFlags == types.BackendUnset {
			return types.BackendUnset, fmt.Errorf("no backend selected: %w", ErrConfig)
		}
		return fromFlags, nil
	}
	k, ok := types.ParseBackendKind(s.Backend)
	if !ok {
		return types.BackendUnset, fmt.Errorf("unknown backend %q: %w", s.Backend, ErrConfig)
	}
	if fromFlags != types.BackendUnset && fromFlags != k {
		return types.BackendUnset, fmt.Errorf("backend %q conflicts with use_* flags: %w", s.Backend, ErrConfig)
	}
	return k, nil
}

// Periods is a sampling period per power mode, in ms. Zero disables.
type Periods struct {
	Active uint32 `mapstructure:"active"`
	Idle   uint32 `mapstructure:"idle"`
	Sleep  uint32 `mapstructure:"sleep"`
	Stop   uint32 `mapstructure:"stop"`
}

func (p Periods) Table() sampling.PeriodTable {
	return sampling.PeriodTable{p.Active, p.Idle, p.Sleep, p.Stop}
}

func periodsOf(t sampling.PeriodTable) Periods {
	return Periods{Active: t[0], Idle: t[1], Sleep: t[2], Stop: t[3]}
}

// Subsystem configures one sensor quantity.
type Subsystem struct {
	Selection `mapstructure:",squash"`
	// TaskPeriodMs is how often the sampling task is polled.
	TaskPeriodMs uint32  `mapstructure:"task_period_ms"`
	Periods      Periods `mapstructure:"periods"`
}

type Scheduler struct {
	Capacity int    `mapstructure:"capacity"`
	IdleMs   uint32 `mapstructure:"idle_ms"`
}

type Tasks struct {
	HeartbeatMs uint32 `mapstructure:"heartbeat_ms"`
	PowerMs     uint32 `mapstructure:"power_ms"`
	CLIMs       uint32 `mapstructure:"cli_ms"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Light carries TSL2591 register codes.
type Light struct {
	IntegrationTime uint8 `mapstructure:"integration_time"`
	Gain            uint8 `mapstructure:"gain"`
}

// Buses names the board resources used by hardware backends. Names are
// platform specific: periph bus and pin names on Linux, ignored on rp2.
type Buses struct {
	I2C           string `mapstructure:"i2c"`
	SPI           string `mapstructure:"spi"`
	SPIHz         uint32 `mapstructure:"spi_hz"`
	ChipSelectPin string `mapstructure:"cs_pin"`
	HeartbeatPin  string `mapstructure:"heartbeat_pin"`
}

type HubConfig struct {
	Profile     string       `mapstructure:"profile"`
	Temperature Subsystem    `mapstructure:"temperature"`
	Light       Subsystem    `mapstructure:"light"`
	Env         Subsystem    `mapstructure:"env"`
	Scheduler   Scheduler    `mapstructure:"scheduler"`
	Tasks       Tasks        `mapstructure:"tasks"`
	Power       power.Policy `mapstructure:"power"`
	Log         Log          `mapstructure:"log"`
	LightSensor Light        `mapstructure:"light_sensor"`
	Buses       Buses        `mapstructure:"buses"`
}

// Backends resolves the three selections.
type Backends struct {
	Temperature types.BackendKind
	Light       types.BackendKind
	Env         types.BackendKind
}

// TaskCount is the number of tasks the hub registers.
const TaskCount = 6

// Validate checks the whole configuration and resolves backend selection.
func (c HubConfig) Validate() (Backends, error) {
	var b Backends
	var err error
	if b.Temperature, err = c.Temperature.Resolve(); err != nil {
		return Backends{}, fmt.Errorf("temperature: %w", err)
	}
	if b.Light, err = c.Light.Resolve(); err != nil {
		return Backends{}, fmt.Errorf("light: %w", err)
	}
	if b.Env, err = c.Env.Resolve(); err != nil {
		return Backends{}, fmt.Errorf("env: %w", err)
	}
	tasks := map[string]uint32{
		"heartbeat":   c.Tasks.HeartbeatMs,
		"power":       c.Tasks.PowerMs,
		"cli":         c.Tasks.CLIMs,
		"temperature": c.Temperature.TaskPeriodMs,
		"light":       c.Light.TaskPeriodMs,
		"env":         c.Env.TaskPeriodMs,
	}
	for name, p := range tasks {
		if p == 0 {
			return Backends{}, fmt.Errorf("%s task period is zero: %w", name, ErrConfig)
		}
	}
	if it := tsl2591.IntegrationTime(c.LightSensor.IntegrationTime); it > tsl2591.IT600ms {
		return Backends{}, fmt.Errorf("light_sensor integration_time %d out of range 0..%d: %w",
			c.LightSensor.IntegrationTime, tsl2591.IT600ms, ErrConfig)
	}
	if g := tsl2591.Gain(c.LightSensor.Gain); g > tsl2591.GainMax {
		return Backends{}, fmt.Errorf("light_sensor gain %d out of range 0..%d: %w",
			c.LightSensor.Gain, tsl2591.GainMax, ErrConfig)
	}
	// Idle cycles accumulate across modes, so each enabled step must come
	// after the one before it.
	p := c.Power
	if p.IdleAfter != 0 && p.SleepAfter != 0 && p.SleepAfter <= p.IdleAfter {
		return Backends{}, fmt.Errorf("power sleep_after %d must exceed idle_after %d: %w",
			p.SleepAfter, p.IdleAfter, ErrConfig)
	}
	if p.SleepAfter != 0 && p.StopAfter != 0 && p.StopAfter <= p.SleepAfter {
		return Backends{}, fmt.Errorf("power stop_after %d must exceed sleep_after %d: %w",
			p.StopAfter, p.SleepAfter, ErrConfig)
	}
	if c.Scheduler.Capacity < 0 {
		return Backends{}, fmt.Errorf("negative scheduler capacity: %w", ErrConfig)
	}
	if _, ok := logx.ParseLevel(c.Log.Level); !ok && c.Log.Level != "" {
		return Backends{}, fmt.Errorf("unknown log level %q: %w", c.Log.Level, ErrConfig)
	}
	return b, nil
}
