//go:build linux && !(rp2040 || rp2350)

package platform

import (
	"fmt"
	"os"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"sensorhub-go/logx"
	"sensorhub-go/services/config"
	"sensorhub-go/services/heartbeat"
)

const i2cTimeout = 250 * time.Millisecond

// spiConn adapts a periph connection to tinygo.org/x/drivers.SPI.
type spiConn struct{ c spi.Conn }

func (s spiConn) Tx(w, r []byte) error {
	if r == nil {
		r = make([]byte, len(w))
	}
	return s.c.Tx(w, r)
}

func (s spiConn) Transfer(b byte) (byte, error) {
	var rx [1]byte
	err := s.c.Tx([]byte{b}, rx[:])
	return rx[0], err
}

type periphPin struct {
	p   gpio.PinIO
	on  bool
	log logx.Logger
}

func (p *periphPin) Toggle() {
	p.on = !p.on
	l := gpio.Low
	if p.on {
		l = gpio.High
	}
	if err := p.p.Out(l); err != nil {
		p.log.Log(logx.Warn, "heartbeat pin write failed", logx.F("pin", p.p.Name()), logx.F("err", err))
	}
}

// Open initialises periph and opens the configured buses by their periph
// names ("" picks the first I2C bus, e.g. "/dev/spidev0.0" or "SPI0.0"
// for SPI). A bus that fails to open is logged and left nil.
func Open(cfg config.Buses, log logx.Logger) (*Resources, error) {
	log = logx.OrNop(log)
	r := &Resources{
		LED:  &heartbeat.MemPin{},
		Out:  os.Stdout,
		In:   os.Stdin,
	}
	if cfg.I2C == "" && cfg.SPI == "" && cfg.HeartbeatPin == "" {
		return r, nil
	}
	if _, err := host.Init(); err != nil {
		return r, fmt.Errorf("periph init: %w", err)
	}

	if cfg.I2C != "" {
		name := cfg.I2C
		if name == "default" {
			name = ""
		}
		bus, err := i2creg.Open(name)
		if err != nil {
			log.Log(logx.Error, "i2c open failed", logx.F("bus", cfg.I2C), logx.F("err", err))
		} else {
			o := NewI2COwner(bus, i2cTimeout)
			r.I2C = o
			r.onClose(bus.Close)
			r.onClose(o.Close)
		}
	}

	if cfg.SPI != "" {
		port, err := spireg.Open(cfg.SPI)
		if err != nil {
			log.Log(logx.Error, "spi open failed", logx.F("bus", cfg.SPI), logx.F("err", err))
		} else {
			hz := cfg.SPIHz
			if hz == 0 {
				hz = 1_000_000
			}
			conn, err := port.Connect(physic.Hertz*physic.Frequency(hz), spi.Mode0, 8)
			if err != nil {
				log.Log(logx.Error, "spi connect failed", logx.F("bus", cfg.SPI), logx.F("err", err))
				_ = port.Close()
			} else {
				r.SPI = spiConn{c: conn}
				r.onClose(port.Close)
			}
		}
		if cfg.ChipSelectPin != "" {
			if p := gpioreg.ByName(cfg.ChipSelectPin); p != nil {
				_ = p.Out(gpio.High)
				r.ChipSelect = func(active bool) { _ = p.Out(gpio.Level(!active)) }
			}
		}
	}

	if cfg.HeartbeatPin != "" {
		if p := gpioreg.ByName(cfg.HeartbeatPin); p != nil {
			r.LED = &periphPin{p: p, log: log}
		} else {
			log.Log(logx.Warn, "heartbeat pin not found", logx.F("pin", cfg.HeartbeatPin))
		}
	}
	return r, nil
}
