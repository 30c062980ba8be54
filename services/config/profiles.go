package config

import (
	"sort"

	"sensorhub-go/services/power"
	"sensorhub-go/services/sampling"
	"sensorhub-go/services/scheduler"
)

// Profile names.
const (
	ProfileSim    = "sim"
	ProfilePicoHW = "pico_hw"
)

func base() HubConfig {
	return HubConfig{
		Temperature: Subsystem{TaskPeriodMs: 1000, Periods: periodsOf(sampling.TemperaturePeriods)},
		Light:       Subsystem{TaskPeriodMs: 1000, Periods: periodsOf(sampling.LightPeriods)},
		Env:         Subsystem{TaskPeriodMs: 2000, Periods: periodsOf(sampling.EnvPeriods)},
		Scheduler:   Scheduler{Capacity: scheduler.DefaultCapacity, IdleMs: 1},
		Tasks:       Tasks{HeartbeatMs: 500, PowerMs: 500, CLIMs: 20},
		Power:       power.DefaultPolicy(),
		Log:         Log{Level: "info", Format: "text"},
		// 200 ms integration, medium gain.
		LightSensor: Light{IntegrationTime: 1, Gain: 1},
	}
}

var profiles = map[string]func() HubConfig{
	ProfileSim: func() HubConfig {
		c := base()
		c.Profile = ProfileSim
		c.Temperature.Backend = "sim"
		c.Light.Backend = "sim"
		c.Env.Backend = "sim"
		return c
	},
	ProfilePicoHW: func() HubConfig {
		c := base()
		c.Profile = ProfilePicoHW
		c.Temperature.Backend = "hw"
		c.Light.Backend = "hw"
		c.Env.Backend = "hw"
		c.Buses = Buses{I2C: "i2c0", SPI: "spi0", SPIHz: 1_000_000, ChipSelectPin: "GP17", HeartbeatPin: "GP25"}
		return c
	},
}

// Profile returns a fresh copy of the named profile.
func Profile(name string) (HubConfig, bool) {
	f, ok := profiles[name]
	if !ok {
		return HubConfig{}, false
	}
	return f(), true
}

// Default is the simulated profile.
func Default() HubConfig {
	c, _ := Profile(ProfileSim)
	return c
}

// Profiles lists the compiled-in profile names.
func Profiles() []string {
	out := make([]string, 0, len(profiles))
	for k := range profiles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
