// Package env provides the temperature/pressure/humidity subsystem
// backends.
package env

import (
	"tinygo.org/x/drivers"

	"sensorhub-go/drivers/bme280"
	"sensorhub-go/drivers/regio"
	"sensorhub-go/services/sensors"
	"sensorhub-go/types"
	"sensorhub-go/x/timex"
)

const simStep = 0.02

// Sim produces three correlated sinusoids in plausible indoor ranges.
type Sim struct {
	clock timex.Clock
	phase sensors.Phase
}

func NewSim(clock timex.Clock) *Sim {
	return &Sim{clock: clock, phase: sensors.Phase{Step: simStep}}
}

func (s *Sim) Init() error {
	s.phase.Reset()
	return nil
}

func (s *Sim) Read(out *types.EnvSample) error {
	if out == nil {
		return sensors.ErrNilOutput
	}
	p := s.phase.Next()
	out.TemperatureC = sensors.Wave(24, 4, p, 20, 28)
	out.PressurePa = sensors.Wave(101325, 800, p*0.5, 100525, 102125)
	out.HumidityRH = sensors.Wave(52, 12, p*0.8+1, 0, 100)
	out.TimestampMs = s.clock.NowMs()
	return nil
}

// HW reads a BME280 on SPI.
type HW struct {
	clock timex.Clock
	dev   *bme280.Device
}

func NewHW(bus drivers.SPI, cs regio.ChipSelect, cfg bme280.Config, clock timex.Clock) *HW {
	if cfg.Clock == nil {
		cfg.Clock = clock
	}
	return &HW{clock: clock, dev: bme280.New(bus, cs, cfg)}
}

func (h *HW) Init() error { return h.dev.Configure() }

func (h *HW) Read(out *types.EnvSample) error {
	if out == nil {
		return sensors.ErrNilOutput
	}
	r, err := h.dev.Read()
	if err != nil {
		return err
	}
	out.TemperatureC = r.TemperatureC
	out.PressurePa = r.PressurePa
	out.HumidityRH = r.HumidityRH
	out.TimestampMs = h.clock.NowMs()
	return nil
}

var (
	_ sensors.Backend[types.EnvSample] = (*Sim)(nil)
	_ sensors.Backend[types.EnvSample] = (*HW)(nil)
)
