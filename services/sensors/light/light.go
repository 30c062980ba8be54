// Package light provides the ambient light subsystem backends.
package light

import (
	"tinygo.org/x/drivers"

	"sensorhub-go/drivers/tsl2591"
	"sensorhub-go/services/sensors"
	"sensorhub-go/types"
	"sensorhub-go/x/timex"
)

const (
	simBase = 450.0
	simAmp  = 440.0
	simStep = 0.05
	simMax  = 900.0

	fullPerLux = 5.0
	irPerLux   = 1.5
)

// Sim is a slow pseudo-daylight waveform between roughly 10 and 890 lux,
// with raw channel counts proportional to lux.
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

func (s *Sim) Read(out *types.LightSample) error {
	if out == nil {
		return sensors.ErrNilOutput
	}
	lux := sensors.Wave(simBase, simAmp, s.phase.Next(), 0, simMax)
	out.Lux = lux
	out.Full = uint16(lux * fullPerLux)
	out.IR = uint16(lux * irPerLux)
	out.TimestampMs = s.clock.NowMs()
	return nil
}

// DefaultHWConfig is 200 ms integration at medium gain.
func DefaultHWConfig() tsl2591.Config {
	return tsl2591.Config{IntegrationTime: tsl2591.IT200ms, Gain: tsl2591.GainMedium}
}

// HW reads a TSL2591.
type HW struct {
	clock timex.Clock
	dev   *tsl2591.Device
}

func NewHW(bus drivers.I2C, cfg tsl2591.Config, clock timex.Clock) *HW {
	if cfg.Clock == nil {
		cfg.Clock = clock
	}
	return &HW{clock: clock, dev: tsl2591.New(bus, cfg)}
}

func (h *HW) Init() error { return h.dev.Configure() }

func (h *HW) Read(out *types.LightSample) error {
	if out == nil {
		return sensors.ErrNilOutput
	}
	r, err := h.dev.Read()
	if err != nil {
		return err
	}
	out.Lux = r.Lux
	out.Full = r.Full
	out.IR = r.IR
	out.TimestampMs = h.clock.NowMs()
	return nil
}

var (
	_ sensors.Backend[types.LightSample] = (*Sim)(nil)
	_ sensors.Backend[types.LightSample] = (*HW)(nil)
)
