package tsl2591

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensorhub-go/drivers/regio/regiotest"
	"sensorhub-go/errcode"
	"sensorhub-go/x/timex"
)

func TestComputeLuxLowGain100ms(t *testing.T) {
	lux := ComputeLux(1000, 200, IT100ms, GainLow)
	cpl := float32(100.0 / 408.0)
	want := (1000 - 1.87*200) / cpl
	assert.InDelta(t, want, lux, 0.01)
	assert.InDelta(t, 2554.08, lux, 0.05)
}

func TestComputeLuxSecondFormulaWins(t *testing.T) {
	// lux1 = (100-187)/cpl < 0, lux2 = (63-100)/cpl < 0: both negative clamp to 0.
	assert.Equal(t, float32(0), ComputeLux(100, 100, IT100ms, GainLow))

	// full=1000, ir=600: lux1 = -122/cpl, lux2 = 30/cpl, so lux2 is taken.
	got := ComputeLux(1000, 600, IT200ms, GainMedium)
	cpl := float32(200 * 25 / 408.0)
	assert.InDelta(t, 30/cpl, got, 0.001)
}

func TestUnknownCodesFallBack(t *testing.T) {
	assert.Equal(t, float32(100), IntegrationTime(9).Millis())
	assert.Equal(t, float32(1), Gain(7).Multiplier())
	assert.Equal(t, float32(600), IT600ms.Millis())
}

func newBus(id byte) (*regiotest.I2C, *[256]byte) {
	bus := regiotest.NewI2C()
	bus.Mask = 0x1F
	regs := bus.Device(Address)
	regs[regID] = id
	return bus, regs
}

func TestConfigureProgramsRegisters(t *testing.T) {
	bus, regs := newBus(deviceID)
	d := New(bus, Config{IntegrationTime: IT200ms, Gain: GainMedium})
	require.NoError(t, d.Configure())

	assert.Equal(t, byte(0x11), regs[regControl])
	assert.Equal(t, byte(0x01), regs[regPersist])
	assert.Equal(t, byte(enablePON|enableAEN), regs[regEnable])
}

func TestConfigureRejectsWrongID(t *testing.T) {
	bus, _ := newBus(0x42)
	err := New(bus, Config{}).Configure()
	assert.True(t, errors.Is(err, errcode.Identity))
	assert.Empty(t, bus.Writes)
}

func TestReadReturnsChannelsAndLux(t *testing.T) {
	bus, regs := newBus(deviceID)
	regs[regStatus] = statusAVALID
	regs[regC0DataL], regs[regC0DataL+1] = 0xE8, 0x03 // 1000
	regs[regC1DataL], regs[regC1DataL+1] = 0xC8, 0x00 // 200

	d := New(bus, Config{})
	r, err := d.Read()
	require.NoError(t, err)
	assert.Equal(t, uint16(1000), r.Full)
	assert.Equal(t, uint16(200), r.IR)
	assert.InDelta(t, 2554.08, r.Lux, 0.05)
}

func TestReadTimesOutWithoutAVALID(t *testing.T) {
	bus, _ := newBus(deviceID)
	clk := &timex.Manual{}
	d := New(bus, Config{Clock: clk, Sleep: func(time.Duration) { clk.Advance(50) }})

	_, err := d.Read()
	assert.True(t, errors.Is(err, errcode.Timeout))
	assert.GreaterOrEqual(t, clk.NowMs(), uint32(1000))
}
