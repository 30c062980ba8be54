// Package tsl2591 drives the TSL2591 ambient light sensor over I2C.
//
// Every register access carries the command prefix 0xA0 (CMD=1, normal
// transaction). Read waits for AVALID, then reads both ADC channels and
// converts them to lux with the datasheet approximation.
package tsl2591

import (
	"time"

	"tinygo.org/x/drivers"

	"sensorhub-go/drivers/regio"
	"sensorhub-go/errcode"
	"sensorhub-go/x/timex"
)

const Address = 0x29

const (
	cmdNormal = 0xA0

	regEnable  = 0x00
	regControl = 0x01
	regPersist = 0x0C
	regID      = 0x12
	regStatus  = 0x13
	regC0DataL = 0x14
	regC1DataL = 0x16

	enablePON = 1 << 0
	enableAEN = 1 << 1

	statusAVALID = 1 << 0

	deviceID = 0x50

	luxDF = 408.0
)

type IntegrationTime uint8

const (
	IT100ms IntegrationTime = iota
	IT200ms
	IT300ms
	IT400ms
	IT500ms
	IT600ms
)

// Millis returns the integration time; unknown codes count as 100 ms.
func (it IntegrationTime) Millis() float32 {
	if it > IT600ms {
		return 100
	}
	return float32(100 * (uint32(it) + 1))
}

type Gain uint8

const (
	GainLow Gain = iota
	GainMedium
	GainHigh
	GainMax
)

// Multiplier returns the analog gain factor; unknown codes count as 1x.
func (g Gain) Multiplier() float32 {
	switch g {
	case GainMedium:
		return 25
	case GainHigh:
		return 428
	case GainMax:
		return 9876
	default:
		return 1
	}
}

// Config is optional; zero fields take defaults.
type Config struct {
	Address         uint16          // default 0x29
	IntegrationTime IntegrationTime // default IT100ms (zero value)
	Gain            Gain            // default GainLow (zero value)
	TimeoutMS       int             // per transaction, default 50
	ReadyTimeoutMS  uint32          // AVALID wait, default 1000
	Clock           timex.Clock     // default system clock
	Sleep           func(time.Duration)
}

// Reading is one conversion.
type Reading struct {
	Full uint16
	IR   uint16
	Lux  float32
}

type Device struct {
	reg  *regio.I2CDev
	cfg  Config
	wait regio.Waiter
}

func New(bus drivers.I2C, cfg Config) *Device {
	if cfg.Address == 0 {
		cfg.Address = Address
	}
	if cfg.ReadyTimeoutMS == 0 {
		cfg.ReadyTimeoutMS = 1000
	}
	reg := regio.NewI2C(bus, cfg.Address, cfg.TimeoutMS).
		WithCommand(func(r byte) byte { return cmdNormal | (r & 0x1F) })
	return &Device{
		reg:  reg,
		cfg:  cfg,
		wait: regio.Waiter{Clock: cfg.Clock, Sleep: cfg.Sleep},
	}
}

// Configure verifies the device ID, programs gain and integration time
// and powers the ALS on.
func (d *Device) Configure() error {
	id, err := d.reg.ReadU8(regID)
	if err != nil {
		return err
	}
	if id != deviceID {
		return errcode.Wrap(errcode.Identity, "tsl2591", nil)
	}
	control := byte(d.cfg.Gain)<<4 | byte(d.cfg.IntegrationTime)&0x07
	if err := d.reg.WriteReg(regControl, control); err != nil {
		return err
	}
	// Interrupt persistence is unused; a failure here is harmless.
	_ = d.reg.WriteReg(regPersist, 0x01)
	return d.reg.WriteReg(regEnable, enablePON|enableAEN)
}

// Read waits for valid ALS data and returns both channels and lux.
func (d *Device) Read() (Reading, error) {
	err := d.wait.Until(d.cfg.ReadyTimeoutMS, func() (bool, error) {
		st, err := d.reg.ReadU8(regStatus)
		return st&statusAVALID != 0, err
	})
	if err != nil {
		return Reading{}, err
	}
	full, err := d.reg.ReadU16LE(regC0DataL)
	if err != nil {
		return Reading{}, err
	}
	ir, err := d.reg.ReadU16LE(regC1DataL)
	if err != nil {
		return Reading{}, err
	}
	return Reading{
		Full: full,
		IR:   ir,
		Lux:  ComputeLux(full, ir, d.cfg.IntegrationTime, d.cfg.Gain),
	}, nil
}

// ComputeLux applies the two datasheet approximations and keeps the larger,
// never returning a negative value.
func ComputeLux(full, ir uint16, it IntegrationTime, gain Gain) float32 {
	cpl := it.Millis() * gain.Multiplier() / luxDF
	if cpl <= 0 {
		return 0
	}
	f, i := float32(full), float32(ir)
	lux1 := (f - 1.87*i) / cpl
	lux2 := (0.63*f - i) / cpl
	lux := lux1
	if lux2 > lux {
		lux = lux2
	}
	if lux < 0 {
		return 0
	}
	return lux
}
