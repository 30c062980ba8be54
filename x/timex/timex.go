// Package timex holds the hub's millisecond clock contract and the
// wraparound-safe arithmetic every periodic decision goes through.
package timex

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Clock is a monotonic millisecond counter. It wraps at 2^32.
type Clock interface {
	NowMs() uint32
}

// Elapsed returns now-then modulo 2^32, which stays correct across a
// single counter wrap.
func Elapsed(now, then uint32) uint32 { return now - then }

// Due reports whether period has elapsed since last.
// A zero period is never due.
func Due(now, last, period uint32) bool {
	if period == 0 {
		return false
	}
	return Elapsed(now, last) >= period
}

// wallClock counts milliseconds since it was created, shifted by offset.
type wallClock struct {
	c      clock.Clock
	start  time.Time
	offset uint32
}

// FromClock returns a Clock counting milliseconds from the moment of the
// call on c. offset is added to every reading, which lets tests start the
// counter close to the wrap point.
func FromClock(c clock.Clock, offset uint32) Clock {
	return &wallClock{c: c, start: c.Now(), offset: offset}
}

// System returns a Clock over the real time source.
func System() Clock { return FromClock(clock.New(), 0) }

func (w *wallClock) NowMs() uint32 {
	return uint32(w.c.Since(w.start).Milliseconds()) + w.offset
}

// Manual is a hand-stepped clock for tests and simulation.
type Manual struct{ Ms uint32 }

func (m *Manual) NowMs() uint32 { return m.Ms }

// Advance moves the clock forward by d milliseconds.
func (m *Manual) Advance(d uint32) { m.Ms += d }
