package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensorhub-go/drivers/bme280"
	"sensorhub-go/drivers/regio/regiotest"
	"sensorhub-go/services/sensors"
	"sensorhub-go/types"
	"sensorhub-go/x/timex"
)

func TestSimRanges(t *testing.T) {
	s := NewSim(&timex.Manual{})
	require.NoError(t, s.Init())
	// 0.02 rad per read: 400 reads covers more than a full cycle.
	for i := 0; i < 400; i++ {
		var e types.EnvSample
		require.NoError(t, s.Read(&e))
		assert.GreaterOrEqual(t, e.TemperatureC, float32(20))
		assert.LessOrEqual(t, e.TemperatureC, float32(28))
		assert.InDelta(t, 101325, e.PressurePa, 800.5)
		assert.GreaterOrEqual(t, e.HumidityRH, float32(40))
		assert.LessOrEqual(t, e.HumidityRH, float32(64))
	}
	assert.ErrorIs(t, s.Read(nil), sensors.ErrNilOutput)
}

func TestHWInitFailsOnMissingChip(t *testing.T) {
	bus := &regiotest.SPI{}
	h := NewHW(bus, nil, bme280.Config{}, &timex.Manual{})
	assert.Error(t, h.Init())
}

func TestHWReadPropagatesBusErrors(t *testing.T) {
	bus := &regiotest.SPI{}
	bus.Regs[0xD0] = 0x60
	h := NewHW(bus, nil, bme280.Config{}, &timex.Manual{})
	require.NoError(t, h.Init())

	bus.Fail = true
	var e types.EnvSample
	assert.Error(t, h.Read(&e))
	assert.Zero(t, e.TimestampMs)
}
