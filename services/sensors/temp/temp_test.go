package temp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensorhub-go/drivers/lm75"
	"sensorhub-go/drivers/regio/regiotest"
	"sensorhub-go/services/sensors"
	"sensorhub-go/types"
	"sensorhub-go/x/timex"
)

func TestSimIsBoundedAndDeterministic(t *testing.T) {
	clk := &timex.Manual{Ms: 77}
	a, b := NewSim(clk), NewSim(clk)
	require.NoError(t, a.Init())
	require.NoError(t, b.Init())

	for i := 0; i < 200; i++ {
		var sa, sb types.TemperatureSample
		require.NoError(t, a.Read(&sa))
		require.NoError(t, b.Read(&sb))
		assert.Equal(t, sa, sb)
		assert.GreaterOrEqual(t, sa.Celsius, float32(20))
		assert.LessOrEqual(t, sa.Celsius, float32(28))
		assert.Equal(t, uint32(77), sa.TimestampMs)
	}
}

func TestSimInitRestartsWaveform(t *testing.T) {
	s := NewSim(&timex.Manual{})
	require.NoError(t, s.Init())
	var first, again types.TemperatureSample
	require.NoError(t, s.Read(&first))
	require.NoError(t, s.Read(&again))
	require.NoError(t, s.Init())
	require.NoError(t, s.Read(&again))
	assert.Equal(t, first, again)
}

func TestSimRejectsNilOut(t *testing.T) {
	assert.ErrorIs(t, NewSim(&timex.Manual{}).Read(nil), sensors.ErrNilOutput)
}

func TestHWReadsLM75(t *testing.T) {
	bus := regiotest.NewI2C()
	regs := bus.Device(lm75.Address)
	regs[0], regs[1] = 0x1A, 0x40 // 26.25 °C

	h := NewHW(bus, lm75.Config{}, &timex.Manual{Ms: 5000})
	require.NoError(t, h.Init())

	var s types.TemperatureSample
	require.NoError(t, h.Read(&s))
	assert.Equal(t, float32(26.25), s.Celsius)
	assert.Equal(t, uint32(5000), s.TimestampMs)
}

func TestHWInitFailsWhenAbsent(t *testing.T) {
	h := NewHW(regiotest.NewI2C(), lm75.Config{}, &timex.Manual{})
	assert.Error(t, h.Init())
}
