//go:build rp2040 || rp2350

package platform

import (
	"context"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"sensorhub-go/logx"
	"sensorhub-go/services/config"
)

const (
	consoleBaud = 115200
	i2cTimeout  = 250 * time.Millisecond
)

type rp2Pin struct{ p machine.Pin }

func (r rp2Pin) Toggle() {
	if r.p.Get() {
		r.p.Low()
	} else {
		r.p.High()
	}
}

type uartWriter struct{ u *uartx.UART }

func (w uartWriter) Write(b []byte) (int, error) { return w.u.Write(b) }

// Open configures I2C0 and SPI0 on the board-default pins, the heartbeat
// LED and UART0 as the console.
func Open(cfg config.Buses, log logx.Logger) (*Resources, error) {
	log = logx.OrNop(log)
	r := &Resources{}

	if cfg.I2C != "" {
		i2c, sda, scl := machine.I2C0, machine.I2C0_SDA_PIN, machine.I2C0_SCL_PIN
		if cfg.I2C == "i2c1" {
			i2c, sda, scl = machine.I2C1, machine.I2C1_SDA_PIN, machine.I2C1_SCL_PIN
		}
		if err := i2c.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz, SDA: sda, SCL: scl}); err != nil {
			log.Log(logx.Error, "i2c configure failed", logx.F("bus", cfg.I2C), logx.F("err", err))
		} else {
			o := NewI2COwner(i2c, i2cTimeout)
			r.I2C = o
			r.onClose(o.Close)
		}
	}

	if cfg.SPI != "" {
		spi := machine.SPI0
		if cfg.SPI == "spi1" {
			spi = machine.SPI1
		}
		hz := cfg.SPIHz
		if hz == 0 {
			hz = 1_000_000
		}
		if err := spi.Configure(machine.SPIConfig{Frequency: hz, Mode: 0}); err != nil {
			log.Log(logx.Error, "spi configure failed", logx.F("bus", cfg.SPI), logx.F("err", err))
		} else {
			r.SPI = spi
			if n, ok := ParseGP(cfg.ChipSelectPin); ok {
				cs := machine.Pin(n)
				cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
				cs.High()
				r.ChipSelect = func(active bool) { cs.Set(!active) }
			}
		}
	}

	led := machine.LED
	if n, ok := ParseGP(cfg.HeartbeatPin); ok {
		led = machine.Pin(n)
	}
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.LED = rp2Pin{p: led}

	u := uartx.UART0
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: consoleBaud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	}); err != nil {
		return r, err
	}
	r.Out = uartWriter{u: u}
	r.Pump = func(ctx context.Context, feed func([]byte)) {
		var buf [64]byte
		for {
			n, err := u.RecvSomeContext(ctx, buf[:])
			if n > 0 {
				feed(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}
	return r, nil
}
