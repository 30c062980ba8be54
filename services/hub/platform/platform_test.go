package platform

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensorhub-go/drivers/regio"
	"sensorhub-go/drivers/regio/regiotest"
	"sensorhub-go/errcode"
)

func TestParseGP(t *testing.T) {
	for in, want := range map[string]int{"GP25": 25, "gp4": 4, "17": 17, " GP0 ": 0} {
		n, ok := ParseGP(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, n, in)
	}
	for _, bad := range []string{"", "LED", "GP99", "GP-1"} {
		_, ok := ParseGP(bad)
		assert.False(t, ok, bad)
	}
}

func TestCloseRunsInReverseAndCombinesErrors(t *testing.T) {
	var order []int
	r := &Resources{}
	r.onClose(func() error { order = append(order, 1); return errors.New("first") })
	r.onClose(func() error { order = append(order, 2); return errors.New("second") })

	err := r.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
	assert.Equal(t, []int{2, 1}, order)
	assert.NoError(t, r.Close())
}

func TestI2COwnerForwardsTransactions(t *testing.T) {
	bus := regiotest.NewI2C()
	bus.Device(0x48)[0] = 0x19
	o := NewI2COwner(bus, time.Second)
	defer o.Close()

	var _ regio.TimedI2C = o
	var b [1]byte
	require.NoError(t, o.TxTimeout(0x48, []byte{0}, b[:], 50))
	assert.Equal(t, byte(0x19), b[0])
	assert.Error(t, o.Tx(0x50, []byte{0}, b[:]))
}

type stuckBus struct{ release chan struct{} }

func (s stuckBus) Tx(addr uint16, w, r []byte) error {
	<-s.release
	return nil
}

func TestI2COwnerTimesOutOnStuckBus(t *testing.T) {
	bus := stuckBus{release: make(chan struct{})}
	o := NewI2COwner(bus, 0)
	defer func() {
		close(bus.release)
		o.Close()
	}()

	err := o.TxTimeout(0x29, []byte{0x13}, make([]byte, 1), 20)
	assert.True(t, errors.Is(err, errcode.Timeout))
}

// gatedBus blocks every transfer until open is closed and records what
// reached the wire.
type gatedBus struct {
	open chan struct{}
	fill byte

	mu     sync.Mutex
	writes [][]byte
}

func (g *gatedBus) Tx(addr uint16, w, r []byte) error {
	<-g.open
	g.mu.Lock()
	g.writes = append(g.writes, append([]byte(nil), w...))
	g.mu.Unlock()
	for i := range r {
		r[i] = g.fill
	}
	return nil
}

func (g *gatedBus) wire() [][]byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([][]byte(nil), g.writes...)
}

func TestI2COwnerDropsAbandonedWrites(t *testing.T) {
	bus := &gatedBus{open: make(chan struct{})}
	o := NewI2COwner(bus, 0)
	defer o.Close()
	dev := regio.NewI2C(o, 0x29, 20)

	// The first write reaches the worker and blocks on the bus; the other
	// two time out while still queued.
	assert.True(t, errors.Is(dev.WriteReg(0x00, 0x03), errcode.Timeout))
	assert.True(t, errors.Is(dev.WriteReg(0x01, 0x11), errcode.Timeout))
	assert.True(t, errors.Is(dev.WriteReg(0x0C, 0x01), errcode.Timeout))

	close(bus.open)
	require.NoError(t, o.TxTimeout(0x29, []byte{0x0D, 0x02}, nil, 1000))

	assert.Equal(t, [][]byte{{0x00, 0x03}, {0x0D, 0x02}}, bus.wire())
}

func TestI2COwnerLeavesReadBufferOnTimeout(t *testing.T) {
	bus := &gatedBus{open: make(chan struct{}), fill: 0xFF}
	o := NewI2COwner(bus, 0)
	defer o.Close()

	r := make([]byte, 2)
	err := o.TxTimeout(0x48, []byte{0x00}, r, 20)
	assert.True(t, errors.Is(err, errcode.Timeout))

	close(bus.open)
	got := make([]byte, 2)
	require.NoError(t, o.TxTimeout(0x48, []byte{0x00}, got, 1000))
	assert.Equal(t, []byte{0xFF, 0xFF}, got)
	assert.Equal(t, []byte{0, 0}, r, "late completion must not touch the caller's buffer")
}

func TestI2COwnerTxAfterCloseReturns(t *testing.T) {
	o := NewI2COwner(regiotest.NewI2C(), 0)
	require.NoError(t, o.Close())
	require.NoError(t, o.Close())

	done := make(chan error, 1)
	go func() { done <- o.Tx(0x48, []byte{0}, make([]byte, 1)) }()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrOwnerClosed))
		assert.True(t, errors.Is(err, errcode.BusError))
	case <-time.After(time.Second):
		t.Fatal("Tx blocked after Close")
	}
}
