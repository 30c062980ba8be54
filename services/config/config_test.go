package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensorhub-go/services/sampling"
	"sensorhub-go/types"
)

func TestSelectionResolve(t *testing.T) {
	cases := []struct {
		name string
		sel  Selection
		want types.BackendKind
		err  bool
	}{
		{"backend sim", Selection{Backend: "sim"}, types.BackendSim, false},
		{"backend hardware", Selection{Backend: "hardware"}, types.BackendHW, false},
		{"flag sim", Selection{UseSim: true}, types.BackendSim, false},
		{"flag hw", Selection{UseHW: true}, types.BackendHW, false},
		{"agreeing forms", Selection{Backend: "hw", UseHW: true}, types.BackendHW, false},
		{"nothing", Selection{}, types.BackendUnset, true},
		{"both flags", Selection{UseSim: true, UseHW: true}, types.BackendUnset, true},
		{"conflict", Selection{Backend: "sim", UseHW: true}, types.BackendUnset, true},
		{"unknown", Selection{Backend: "fpga"}, types.BackendUnset, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := c.sel.Resolve()
			if c.err {
				assert.True(t, errors.Is(err, ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestProfilesValidate(t *testing.T) {
	for _, name := range Profiles() {
		c, ok := Profile(name)
		require.True(t, ok, name)
		_, err := c.Validate()
		assert.NoError(t, err, name)
	}
	assert.Equal(t, []string{ProfilePicoHW, ProfileSim}, Profiles())
}

func TestDefaultIsSimulatedWithStockCadence(t *testing.T) {
	c := Default()
	b, err := c.Validate()
	require.NoError(t, err)
	assert.Equal(t, Backends{types.BackendSim, types.BackendSim, types.BackendSim}, b)
	assert.Equal(t, sampling.TemperaturePeriods, c.Temperature.Periods.Table())
	assert.Equal(t, uint32(500), c.Tasks.HeartbeatMs)
	assert.Equal(t, uint32(20), c.Tasks.CLIMs)
	assert.Equal(t, uint32(2000), c.Env.TaskPeriodMs)
}

func TestProfileReturnsCopies(t *testing.T) {
	a, _ := Profile(ProfileSim)
	a.Temperature.Backend = "hw"
	b, _ := Profile(ProfileSim)
	assert.Equal(t, "sim", b.Temperature.Backend)

	_, ok := Profile("nope")
	assert.False(t, ok)
}

func TestValidateRejects(t *testing.T) {
	c := Default()
	c.Tasks.PowerMs = 0
	_, err := c.Validate()
	assert.ErrorIs(t, err, ErrConfig)

	c = Default()
	c.Light.Backend = ""
	_, err = c.Validate()
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "light")

	c = Default()
	c.Log.Level = "shouty"
	_, err = c.Validate()
	assert.ErrorIs(t, err, ErrConfig)

	c = Default()
	c.LightSensor = Light{IntegrationTime: 9, Gain: 1}
	_, err = c.Validate()
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "integration_time")

	c = Default()
	c.LightSensor = Light{IntegrationTime: 1, Gain: 7}
	_, err = c.Validate()
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "gain")

	c = Default()
	c.Power.StopAfter = 100
	_, err = c.Validate()
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "stop_after")

	c = Default()
	c.Power.SleepAfter = 60
	_, err = c.Validate()
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "sleep_after")
}

func TestValidateAcceptsRangeEdges(t *testing.T) {
	c := Default()
	c.LightSensor = Light{IntegrationTime: 5, Gain: 3}
	c.Power.StopAfter = 241
	_, err := c.Validate()
	assert.NoError(t, err)

	c = Default()
	c.Power.IdleAfter = 0
	c.Power.SleepAfter = 10
	_, err = c.Validate()
	assert.NoError(t, err, "disabled steps impose no ordering")
}
