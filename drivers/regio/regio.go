// Package regio gives register-oriented drivers bounded-time access to
// tinygo.org/x/drivers I2C and SPI buses.
//
// I2C buses that also implement TimedI2C get a per-transaction timeout;
// plain buses are used as they are. Every failure is reported as an
// errcode (timeout or bus_error) wrapped with the failing register.
package regio

import (
	"errors"
	"strconv"
	"time"

	"tinygo.org/x/drivers"

	"sensorhub-go/errcode"
	"sensorhub-go/x/timex"
)

// TimedI2C is implemented by buses able to bound a single transaction.
// timeoutMS <= 0 selects the bus default.
type TimedI2C interface {
	drivers.I2C
	TxTimeout(addr uint16, w, r []byte, timeoutMS int) error
}

// DefaultTimeoutMS bounds each transaction unless the device overrides it.
const DefaultTimeoutMS = 50

// I2CDev addresses one device on an I2C bus.
type I2CDev struct {
	bus       drivers.I2C
	addr      uint16
	timeoutMS int
	cmd       func(reg byte) byte
	wbuf      [8]byte
}

// NewI2C binds addr on bus. timeoutMS <= 0 selects DefaultTimeoutMS.
func NewI2C(bus drivers.I2C, addr uint16, timeoutMS int) *I2CDev {
	if timeoutMS <= 0 {
		timeoutMS = DefaultTimeoutMS
	}
	return &I2CDev{bus: bus, addr: addr, timeoutMS: timeoutMS}
}

// WithCommand installs a register-to-command mapping for devices that
// expect a command prefix in front of the register address.
func (d *I2CDev) WithCommand(f func(reg byte) byte) *I2CDev {
	d.cmd = f
	return d
}

func (d *I2CDev) command(reg byte) byte {
	if d.cmd != nil {
		return d.cmd(reg)
	}
	return reg
}

func (d *I2CDev) tx(reg byte, w, r []byte) error {
	var err error
	if t, ok := d.bus.(TimedI2C); ok {
		err = t.TxTimeout(d.addr, w, r, d.timeoutMS)
	} else {
		err = d.bus.Tx(d.addr, w, r)
	}
	return classify(err, reg)
}

// ReadReg fills buf starting at reg.
func (d *I2CDev) ReadReg(reg byte, buf []byte) error {
	d.wbuf[0] = d.command(reg)
	return d.tx(reg, d.wbuf[:1], buf)
}

func (d *I2CDev) ReadU8(reg byte) (byte, error) {
	var b [1]byte
	if err := d.ReadReg(reg, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16LE reads a little-endian word starting at reg.
func (d *I2CDev) ReadU16LE(reg byte) (uint16, error) {
	var b [2]byte
	if err := d.ReadReg(reg, b[:]); err != nil {
		return 0, err
	}
	return uint16(b[1])<<8 | uint16(b[0]), nil
}

// WriteReg writes vals starting at reg. At most 7 value bytes.
func (d *I2CDev) WriteReg(reg byte, vals ...byte) error {
	if len(vals) > len(d.wbuf)-1 {
		return errcode.Wrap(errcode.BusError, "write "+hexReg(reg), errors.New("payload too long"))
	}
	d.wbuf[0] = d.command(reg)
	n := copy(d.wbuf[1:], vals)
	return d.tx(reg, d.wbuf[:1+n], nil)
}

// ChipSelect drives an active-low chip select. active=true asserts it.
// A nil ChipSelect means the bus handles selection itself.
type ChipSelect func(active bool)

// SPIDev addresses one register-mapped device on an SPI bus.
// Reads set bit 7 of the register address, writes clear it.
type SPIDev struct {
	bus drivers.SPI
	cs  ChipSelect
	tx  [33]byte
	rx  [33]byte
}

func NewSPI(bus drivers.SPI, cs ChipSelect) *SPIDev {
	if cs != nil {
		cs(false)
	}
	return &SPIDev{bus: bus, cs: cs}
}

func (d *SPIDev) xfer(reg byte, n int) error {
	if d.cs != nil {
		d.cs(true)
		defer d.cs(false)
	}
	return classify(d.bus.Tx(d.tx[:n], d.rx[:n]), reg)
}

// ReadReg burst-reads len(buf) bytes starting at reg. At most 32 bytes.
func (d *SPIDev) ReadReg(reg byte, buf []byte) error {
	if len(buf) > len(d.rx)-1 {
		return errcode.Wrap(errcode.BusError, "read "+hexReg(reg), errors.New("burst too long"))
	}
	d.tx[0] = reg | 0x80
	for i := 1; i <= len(buf); i++ {
		d.tx[i] = 0
	}
	if err := d.xfer(reg, 1+len(buf)); err != nil {
		return err
	}
	copy(buf, d.rx[1:1+len(buf)])
	return nil
}

func (d *SPIDev) ReadU8(reg byte) (byte, error) {
	var b [1]byte
	if err := d.ReadReg(reg, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *SPIDev) WriteReg(reg, val byte) error {
	d.tx[0] = reg & 0x7F
	d.tx[1] = val
	return d.xfer(reg, 2)
}

// Waiter bounds a polling loop by a millisecond clock.
type Waiter struct {
	Clock    timex.Clock
	Sleep    func(time.Duration)
	Interval time.Duration
}

// Until calls ready until it reports true, fails, or timeoutMs elapses.
// ready is always called at least once.
func (w Waiter) Until(timeoutMs uint32, ready func() (bool, error)) error {
	clk := w.Clock
	if clk == nil {
		clk = timex.System()
	}
	sleep := w.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	interval := w.Interval
	if interval <= 0 {
		interval = 2 * time.Millisecond
	}
	start := clk.NowMs()
	for {
		ok, err := ready()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if timex.Elapsed(clk.NowMs(), start) >= timeoutMs {
			return errcode.Timeout
		}
		sleep(interval)
	}
}

func classify(err error, reg byte) error {
	if err == nil {
		return nil
	}
	if c, ok := err.(errcode.Code); ok {
		return errcode.Wrap(c, "reg "+hexReg(reg), nil)
	}
	return errcode.Wrap(errcode.MapDriverErr(err), "reg "+hexReg(reg), err)
}

func hexReg(reg byte) string {
	s := strconv.FormatUint(uint64(reg), 16)
	if len(s) == 1 {
		s = "0" + s
	}
	return "0x" + s
}
