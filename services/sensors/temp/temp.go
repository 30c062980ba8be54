// Package temp provides the temperature subsystem backends.
package temp

import (
	"tinygo.org/x/drivers"

	"sensorhub-go/drivers/lm75"
	"sensorhub-go/services/sensors"
	"sensorhub-go/types"
	"sensorhub-go/x/timex"
)

const (
	simBase = 25.0
	simAmp  = 3.0
	simStep = 0.5
	simMin  = 20.0
	simMax  = 28.0
)

// Sim is a deterministic sinusoid around 25 °C.
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

func (s *Sim) Read(out *types.TemperatureSample) error {
	if out == nil {
		return sensors.ErrNilOutput
	}
	out.Celsius = sensors.Wave(simBase, simAmp, s.phase.Next(), simMin, simMax)
	out.TimestampMs = s.clock.NowMs()
	return nil
}

// HW reads an LM75-compatible sensor.
type HW struct {
	clock timex.Clock
	dev   *lm75.Device
}

func NewHW(bus drivers.I2C, cfg lm75.Config, clock timex.Clock) *HW {
	return &HW{clock: clock, dev: lm75.New(bus, cfg)}
}

// Init checks the sensor answers.
func (h *HW) Init() error { return h.dev.Probe() }

func (h *HW) Read(out *types.TemperatureSample) error {
	if out == nil {
		return sensors.ErrNilOutput
	}
	c, err := h.dev.ReadCelsius()
	if err != nil {
		return err
	}
	out.Celsius = c
	out.TimestampMs = h.clock.NowMs()
	return nil
}

var (
	_ sensors.Backend[types.TemperatureSample] = (*Sim)(nil)
	_ sensors.Backend[types.TemperatureSample] = (*HW)(nil)
)
