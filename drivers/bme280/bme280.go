// Package bme280 drives the Bosch BME280 environment sensor over SPI.
//
// The device is run in forced mode: every Read triggers one conversion,
// waits for the measuring flag to clear and burst-reads the data block.
// Raw values are compensated with the floating-point formulas from the
// Bosch datasheet.
package bme280

import (
	"time"

	"tinygo.org/x/drivers"

	"sensorhub-go/drivers/regio"
	"sensorhub-go/errcode"
	"sensorhub-go/x/timex"
)

const (
	regCalib00  = 0x88 // T1..P9, then H1 at 0xA1
	regChipID   = 0xD0
	regReset    = 0xE0
	regCalib26  = 0xE1 // H2..H6
	regCtrlHum  = 0xF2
	regStatus   = 0xF3
	regCtrlMeas = 0xF4
	regConfig   = 0xF5
	regData     = 0xF7

	chipID     = 0x60
	resetValue = 0xB6

	statusMeasuring = 1 << 3
	statusIMUpdate  = 1 << 0

	modeForced = 0x01
)

// Oversampling codes for ctrl_hum and ctrl_meas.
type Oversampling uint8

const (
	Skip Oversampling = iota
	X1
	X2
	X4
	X8
	X16
)

// Config is optional; zero fields take defaults.
type Config struct {
	Temperature Oversampling // default X1
	Pressure    Oversampling // default X1
	Humidity    Oversampling // default X1
	// Filter is the IIR coefficient code written to config[4:2].
	Filter uint8
	// MeasureTimeoutMS bounds the wait for one forced conversion. Default 100.
	MeasureTimeoutMS uint32
	Clock            timex.Clock
	Sleep            func(time.Duration)
}

// Calibration holds the factory trimming parameters.
type Calibration struct {
	T1                             uint16
	T2, T3                         int16
	P1                             uint16
	P2, P3, P4, P5, P6, P7, P8, P9 int16
	H1                             uint8
	H2                             int16
	H3                             uint8
	H4, H5                         int16
	H6                             int8
}

// Reading is one compensated measurement.
type Reading struct {
	TemperatureC float32
	PressurePa   float32
	HumidityRH   float32
}

type Device struct {
	reg  *regio.SPIDev
	cfg  Config
	wait regio.Waiter
	cal  Calibration
	buf  [26]byte
}

// New binds the device on bus. cs may be nil when the bus drives chip
// select itself.
func New(bus drivers.SPI, cs regio.ChipSelect, cfg Config) *Device {
	if cfg.Temperature == Skip {
		cfg.Temperature = X1
	}
	if cfg.Pressure == Skip {
		cfg.Pressure = X1
	}
	if cfg.Humidity == Skip {
		cfg.Humidity = X1
	}
	if cfg.MeasureTimeoutMS == 0 {
		cfg.MeasureTimeoutMS = 100
	}
	return &Device{
		reg:  regio.NewSPI(bus, cs),
		cfg:  cfg,
		wait: regio.Waiter{Clock: cfg.Clock, Sleep: cfg.Sleep, Interval: time.Millisecond},
	}
}

// Configure checks the chip ID, soft-resets the device, reads the
// calibration block and programs oversampling and filter settings.
func (d *Device) Configure() error {
	id, err := d.reg.ReadU8(regChipID)
	if err != nil {
		return err
	}
	if id != chipID {
		return errcode.Wrap(errcode.Identity, "bme280", nil)
	}
	if err := d.reg.WriteReg(regReset, resetValue); err != nil {
		return err
	}
	// NVM copy runs after reset; calibration is only valid once it ends.
	if err := d.wait.Until(d.cfg.MeasureTimeoutMS, func() (bool, error) {
		st, err := d.reg.ReadU8(regStatus)
		return st&statusIMUpdate == 0, err
	}); err != nil {
		return err
	}
	if err := d.readCalibration(); err != nil {
		return err
	}
	// ctrl_hum only takes effect after the next ctrl_meas write.
	if err := d.reg.WriteReg(regCtrlHum, byte(d.cfg.Humidity)&0x07); err != nil {
		return err
	}
	if err := d.reg.WriteReg(regConfig, (d.cfg.Filter&0x07)<<2); err != nil {
		return err
	}
	return d.reg.WriteReg(regCtrlMeas, d.ctrlMeas(0))
}

func (d *Device) ctrlMeas(mode byte) byte {
	return byte(d.cfg.Temperature&0x07)<<5 | byte(d.cfg.Pressure&0x07)<<2 | mode&0x03
}

func (d *Device) readCalibration() error {
	b := d.buf[:26]
	if err := d.reg.ReadReg(regCalib00, b); err != nil {
		return err
	}
	u16 := func(i int) uint16 { return uint16(b[i+1])<<8 | uint16(b[i]) }
	c := &d.cal
	c.T1 = u16(0)
	c.T2 = int16(u16(2))
	c.T3 = int16(u16(4))
	c.P1 = u16(6)
	c.P2 = int16(u16(8))
	c.P3 = int16(u16(10))
	c.P4 = int16(u16(12))
	c.P5 = int16(u16(14))
	c.P6 = int16(u16(16))
	c.P7 = int16(u16(18))
	c.P8 = int16(u16(20))
	c.P9 = int16(u16(22))
	c.H1 = b[25]

	h := d.buf[:7]
	if err := d.reg.ReadReg(regCalib26, h); err != nil {
		return err
	}
	c.H2 = int16(uint16(h[1])<<8 | uint16(h[0]))
	c.H3 = h[2]
	c.H4 = int16(int8(h[3]))<<4 | int16(h[4]&0x0F)
	c.H5 = int16(int8(h[5]))<<4 | int16(h[4]>>4)
	c.H6 = int8(h[6])
	return nil
}

// Calibration returns the parameters read by Configure.
func (d *Device) Calibration() Calibration { return d.cal }

// Read triggers one forced conversion and returns the compensated values.
func (d *Device) Read() (Reading, error) {
	if err := d.reg.WriteReg(regCtrlMeas, d.ctrlMeas(modeForced)); err != nil {
		return Reading{}, err
	}
	if err := d.wait.Until(d.cfg.MeasureTimeoutMS, func() (bool, error) {
		st, err := d.reg.ReadU8(regStatus)
		return st&statusMeasuring == 0, err
	}); err != nil {
		return Reading{}, err
	}
	b := d.buf[:8]
	if err := d.reg.ReadReg(regData, b); err != nil {
		return Reading{}, err
	}
	adcP := int32(b[0])<<12 | int32(b[1])<<4 | int32(b[2])>>4
	adcT := int32(b[3])<<12 | int32(b[4])<<4 | int32(b[5])>>4
	adcH := int32(b[6])<<8 | int32(b[7])

	t, tFine := d.cal.Temperature(adcT)
	return Reading{
		TemperatureC: float32(t),
		PressurePa:   float32(d.cal.Pressure(adcP, tFine)),
		HumidityRH:   float32(d.cal.Humidity(adcH, tFine)),
	}, nil
}

// Temperature returns °C and the fine temperature shared with the other
// two compensations.
func (c Calibration) Temperature(adc int32) (celsius, tFine float64) {
	a := float64(adc)
	v1 := (a/16384.0 - float64(c.T1)/1024.0) * float64(c.T2)
	v2 := a/131072.0 - float64(c.T1)/8192.0
	v2 = v2 * v2 * float64(c.T3)
	tFine = v1 + v2
	return tFine / 5120.0, tFine
}

// Pressure returns Pa. A zero P1 yields 0 rather than dividing by zero.
func (c Calibration) Pressure(adc int32, tFine float64) float64 {
	v1 := tFine/2.0 - 64000.0
	v2 := v1 * v1 * float64(c.P6) / 32768.0
	v2 += v1 * float64(c.P5) * 2.0
	v2 = v2/4.0 + float64(c.P4)*65536.0
	v1 = (float64(c.P3)*v1*v1/524288.0 + float64(c.P2)*v1) / 524288.0
	v1 = (1.0 + v1/32768.0) * float64(c.P1)
	if v1 == 0 {
		return 0
	}
	p := 1048576.0 - float64(adc)
	p = (p - v2/4096.0) * 6250.0 / v1
	v1 = float64(c.P9) * p * p / 2147483648.0
	v2 = p * float64(c.P8) / 32768.0
	return p + (v1+v2+float64(c.P7))/16.0
}

// Humidity returns %RH clamped to [0, 100].
func (c Calibration) Humidity(adc int32, tFine float64) float64 {
	h := tFine - 76800.0
	h = (float64(adc) - (float64(c.H4)*64.0 + float64(c.H5)/16384.0*h)) *
		(float64(c.H2) / 65536.0 * (1.0 + float64(c.H6)/67108864.0*h*(1.0+float64(c.H3)/67108864.0*h)))
	h *= 1.0 - float64(c.H1)*h/524288.0
	switch {
	case h > 100:
		return 100
	case h < 0:
		return 0
	}
	return h
}
