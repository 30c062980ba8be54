package light

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensorhub-go/drivers/regio/regiotest"
	"sensorhub-go/drivers/tsl2591"
	"sensorhub-go/errcode"
	"sensorhub-go/types"
	"sensorhub-go/x/timex"
)

func TestSimBoundsAndChannelRatios(t *testing.T) {
	s := NewSim(&timex.Manual{Ms: 10})
	require.NoError(t, s.Init())
	for i := 0; i < 300; i++ {
		var l types.LightSample
		require.NoError(t, s.Read(&l))
		assert.GreaterOrEqual(t, l.Lux, float32(0))
		assert.LessOrEqual(t, l.Lux, float32(900))
		assert.Equal(t, uint16(l.Lux*5), l.Full)
		assert.Equal(t, uint16(l.Lux*1.5), l.IR)
	}
}

func TestSimFirstReading(t *testing.T) {
	s := NewSim(&timex.Manual{})
	require.NoError(t, s.Init())
	var l types.LightSample
	require.NoError(t, s.Read(&l))
	// sin(0.05) ≈ 0.04998
	assert.InDelta(t, 450+440*0.049979, l.Lux, 0.01)
}

func fakeTSL(id byte) (*regiotest.I2C, *[256]byte) {
	bus := regiotest.NewI2C()
	bus.Mask = 0x1F
	regs := bus.Device(tsl2591.Address)
	regs[0x12] = id
	regs[0x13] = 0x01
	return bus, regs
}

func TestHWConfiguresAndReads(t *testing.T) {
	bus, regs := fakeTSL(0x50)
	regs[0x14], regs[0x15] = 0xE8, 0x03
	regs[0x16], regs[0x17] = 0xC8, 0x00

	cfg := DefaultHWConfig()
	h := NewHW(bus, cfg, &timex.Manual{Ms: 900})
	require.NoError(t, h.Init())
	assert.Equal(t, byte(0x11), regs[0x01])

	var l types.LightSample
	require.NoError(t, h.Read(&l))
	assert.Equal(t, uint16(1000), l.Full)
	assert.Equal(t, uint16(200), l.IR)
	assert.Equal(t, tsl2591.ComputeLux(1000, 200, tsl2591.IT200ms, tsl2591.GainMedium), l.Lux)
	assert.Equal(t, uint32(900), l.TimestampMs)
}

func TestHWInitRejectsWrongID(t *testing.T) {
	bus, _ := fakeTSL(0x00)
	err := NewHW(bus, DefaultHWConfig(), &timex.Manual{}).Init()
	assert.True(t, errors.Is(err, errcode.Identity))
}
