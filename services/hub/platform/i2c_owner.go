package platform

import (
	"sync"
	"sync/atomic"
	"time"

	"tinygo.org/x/drivers"

	"sensorhub-go/errcode"
)

// ErrOwnerClosed is returned by transfers attempted after Close.
var ErrOwnerClosed error = errcode.Wrap(errcode.BusError, "i2c owner closed", nil)

// i2cReq owns copies of the caller's buffers. The caller keeps w and r;
// the worker only touches w and rbuf.
type i2cReq struct {
	addr      uint16
	w, rbuf   []byte
	abandoned atomic.Bool
	done      chan error // buffered(1)
}

// I2COwner serialises every transaction on one bus through a single
// worker goroutine, so that a caller can give up on a stuck transfer.
// A transfer given up on before it reaches the bus is never issued.
// It satisfies drivers.I2C and regio.TimedI2C.
type I2COwner struct {
	bus     drivers.I2C
	reqs    chan *i2cReq
	quit    chan struct{}
	once    sync.Once
	timeout time.Duration
}

// NewI2COwner starts the worker. defaultTimeout applies to Tx and to
// TxTimeout calls with timeoutMS <= 0; zero means wait until the
// transfer completes or the owner is closed.
func NewI2COwner(bus drivers.I2C, defaultTimeout time.Duration) *I2COwner {
	o := &I2COwner{
		bus:     bus,
		reqs:    make(chan *i2cReq, 8),
		quit:    make(chan struct{}),
		timeout: defaultTimeout,
	}
	go o.loop()
	return o
}

func (o *I2COwner) loop() {
	for {
		select {
		case req := <-o.reqs:
			if req.abandoned.Load() {
				continue
			}
			req.done <- o.bus.Tx(req.addr, req.w, req.rbuf)
		case <-o.quit:
			return
		}
	}
}

// Close stops the worker. Pending and later callers get ErrOwnerClosed.
func (o *I2COwner) Close() error {
	o.once.Do(func() { close(o.quit) })
	return nil
}

func (o *I2COwner) Tx(addr uint16, w, r []byte) error {
	return o.TxTimeout(addr, w, r, 0)
}

// TxTimeout bounds both the enqueue and the completion of one transfer.
// r is filled only when the transfer completes in time.
func (o *I2COwner) TxTimeout(addr uint16, w, r []byte, timeoutMS int) error {
	d := o.timeout
	if timeoutMS > 0 {
		d = time.Duration(timeoutMS) * time.Millisecond
	}
	req := &i2cReq{addr: addr, done: make(chan error, 1)}
	if len(w) > 0 {
		req.w = append([]byte(nil), w...)
	}
	if len(r) > 0 {
		req.rbuf = make([]byte, len(r))
	}

	var expired <-chan time.Time
	if d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		expired = t.C
	}

	select {
	case o.reqs <- req:
	case <-o.quit:
		return ErrOwnerClosed
	case <-expired:
		return errcode.Busy
	}
	select {
	case err := <-req.done:
		if err == nil {
			copy(r, req.rbuf)
		}
		return err
	case <-o.quit:
		req.abandoned.Store(true)
		return ErrOwnerClosed
	case <-expired:
		req.abandoned.Store(true)
		return errcode.Timeout
	}
}
