// Package regiotest provides in-memory register maps that stand in for
// I2C and SPI peripherals in driver tests.
package regiotest

import (
	"errors"
	"sync"
)

var ErrNack = errors.New("regiotest: nack")

// I2C models devices addressed by a register pointer. The first written
// byte selects the register (after Mask), the rest are stored from there.
// Reads continue from the selected register and auto-increment.
type I2C struct {
	mu sync.Mutex

	Regs map[uint16]*[256]byte
	// Mask is applied to the first written byte to recover the register.
	// Zero means 0xFF.
	Mask byte
	// Fail makes every transaction to that address fail with Err.
	Fail map[uint16]bool
	Err  error
	// OnRead runs before a read of reg is served. Drivers that poll a
	// status register use it to change what the next read returns.
	OnRead func(addr uint16, reg byte, regs *[256]byte)

	Writes   []Write
	LastTime int // timeout passed to the most recent TxTimeout, or -1
}

// Write records one register write.
type Write struct {
	Addr uint16
	Reg  byte
	Data []byte
}

func NewI2C() *I2C {
	return &I2C{Regs: map[uint16]*[256]byte{}, Fail: map[uint16]bool{}, LastTime: -1}
}

// Device returns the register map at addr, creating it on first use.
func (b *I2C) Device(addr uint16) *[256]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.device(addr)
}

func (b *I2C) device(addr uint16) *[256]byte {
	r, ok := b.Regs[addr]
	if !ok {
		r = &[256]byte{}
		b.Regs[addr] = r
	}
	return r
}

func (b *I2C) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Fail[addr] {
		if b.Err != nil {
			return b.Err
		}
		return ErrNack
	}
	if _, ok := b.Regs[addr]; !ok {
		return ErrNack
	}
	regs := b.device(addr)
	mask := b.Mask
	if mask == 0 {
		mask = 0xFF
	}
	var reg byte
	if len(w) > 0 {
		reg = w[0] & mask
		if len(w) > 1 {
			data := append([]byte(nil), w[1:]...)
			b.Writes = append(b.Writes, Write{Addr: addr, Reg: reg, Data: data})
			for i, v := range data {
				regs[reg+byte(i)] = v
			}
		}
	}
	if len(r) > 0 {
		if b.OnRead != nil {
			b.OnRead(addr, reg, regs)
		}
		for i := range r {
			r[i] = regs[reg+byte(i)]
		}
	}
	return nil
}

// Timed wraps b so that it also satisfies regio.TimedI2C.
type Timed struct{ *I2C }

func (t Timed) TxTimeout(addr uint16, w, r []byte, timeoutMS int) error {
	t.mu.Lock()
	t.LastTime = timeoutMS
	t.mu.Unlock()
	return t.Tx(addr, w, r)
}

// SPI models a register-mapped SPI device whose registers live in
// 0x80..0xFF: bit 7 of the first byte set means read, clear means write,
// and the low seven bits select the register either way.
type SPI struct {
	Regs   [256]byte
	Fail   bool
	OnRead func(reg byte, regs *[256]byte)
	Writes []Write
}

func (s *SPI) Tx(w, r []byte) error {
	if s.Fail {
		return ErrNack
	}
	if len(w) == 0 {
		return nil
	}
	reg := w[0] | 0x80
	if w[0]&0x80 != 0 {
		if s.OnRead != nil {
			s.OnRead(reg, &s.Regs)
		}
		for i := 1; i < len(r); i++ {
			r[i] = s.Regs[reg+byte(i-1)]
		}
		return nil
	}
	data := append([]byte(nil), w[1:]...)
	s.Writes = append(s.Writes, Write{Reg: reg, Data: data})
	for i, v := range data {
		s.Regs[reg+byte(i)] = v
	}
	return nil
}

func (s *SPI) Transfer(b byte) (byte, error) {
	if s.Fail {
		return 0, ErrNack
	}
	return 0, nil
}
