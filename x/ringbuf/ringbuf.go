// Package ringbuf is a single-producer, single-consumer byte ring.
//
// The console's reader goroutine is the only producer and the CLI task
// is the only consumer; neither side ever blocks the other.
package ringbuf

import "sync/atomic"

type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32 // consumer index (monotonic)
	wr   atomic.Uint32 // producer index (monotonic)

	dropped atomic.Uint32
}

// New allocates a ring of size bytes. size must be a power of two >= 2.
func New(size int) *Ring {
	if size < 2 || (size&(size-1)) != 0 {
		panic("ringbuf: size must be power of two >= 2")
	}
	return &Ring{buf: make([]byte, size), mask: uint32(size - 1)}
}

func (r *Ring) size() uint32 { return uint32(len(r.buf)) }

// Available is the number of bytes waiting for the consumer.
func (r *Ring) Available() int { return int(r.wr.Load() - r.rd.Load()) }

// Space is the number of bytes the producer may still write.
func (r *Ring) Space() int { return int(r.size()) - r.Available() }

// Dropped counts bytes refused by Write because the ring was full.
func (r *Ring) Dropped() uint32 { return r.dropped.Load() }

// Write copies as much of src as fits and returns the count.
// Bytes that do not fit are counted as dropped.
func (r *Ring) Write(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	rd := r.rd.Load()
	wr := r.wr.Load()
	n := int(r.size() - (wr - rd))
	if n > len(src) {
		n = len(src)
	}
	if short := len(src) - n; short > 0 {
		r.dropped.Add(uint32(short))
	}
	if n == 0 {
		return 0
	}
	idx := wr & r.mask
	first := int(r.size() - idx)
	if first > n {
		first = n
	}
	copy(r.buf[idx:], src[:first])
	copy(r.buf, src[first:n])
	r.wr.Store(wr + uint32(n))
	return n
}

// Read drains up to len(dst) bytes. It never blocks.
func (r *Ring) Read(dst []byte) int {
	if len(dst) == 0 {
		return 0
	}
	rd := r.rd.Load()
	wr := r.wr.Load()
	n := int(wr - rd)
	if n == 0 {
		return 0
	}
	if n > len(dst) {
		n = len(dst)
	}
	idx := rd & r.mask
	first := int(r.size() - idx)
	if first > n {
		first = n
	}
	copy(dst[:first], r.buf[idx:])
	copy(dst[first:n], r.buf)
	r.rd.Store(rd + uint32(n))
	return n
}
