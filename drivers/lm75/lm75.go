// Package lm75 drives LM75/TMP102-style I2C temperature sensors.
//
// The temperature register holds a left-aligned 12-bit two's complement
// value at 0.0625 °C per LSB.
package lm75

import (
	"tinygo.org/x/drivers"

	"sensorhub-go/drivers/regio"
)

const (
	Address = 0x48

	regTemperature = 0x00

	lsbCelsius = 0.0625
)

// Config is optional; zero fields take defaults.
type Config struct {
	Address   uint16 // default 0x48
	TimeoutMS int    // per transaction, default 50
}

type Device struct {
	reg *regio.I2CDev
}

// New binds the device. The bus is not touched until Probe or Read.
func New(bus drivers.I2C, cfg Config) *Device {
	if cfg.Address == 0 {
		cfg.Address = Address
	}
	if cfg.TimeoutMS <= 0 {
		cfg.TimeoutMS = 50
	}
	return &Device{reg: regio.NewI2C(bus, cfg.Address, cfg.TimeoutMS)}
}

// Probe checks that something answers at the configured address.
func (d *Device) Probe() error {
	var b [2]byte
	return d.reg.ReadReg(regTemperature, b[:])
}

// ReadCelsius performs one temperature register read.
func (d *Device) ReadCelsius() (float32, error) {
	var b [2]byte
	if err := d.reg.ReadReg(regTemperature, b[:]); err != nil {
		return 0, err
	}
	return Decode(b[0], b[1]), nil
}

// Decode converts the two temperature register bytes to °C.
func Decode(msb, lsb byte) float32 {
	raw := int16(uint16(msb)<<8|uint16(lsb)) >> 4
	return float32(raw) * lsbCelsius
}
