package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]error{
		"capacity_exceeded": CapacityExceeded,
		"invalid_period":    InvalidPeriod,
		"invalid_mode":      InvalidMode,
		"backend_invalid":   BackendInvalid,
		"not_initialized":   NotInitialized,
		"identity_mismatch": Identity,
		"timeout":           Timeout,
		"config":            Config,
	}
	for want, e := range cases {
		assert.Equal(t, want, e.Error())
	}
}

func TestOfUnwrapsChains(t *testing.T) {
	assert.Equal(t, OK, Of(nil))
	assert.Equal(t, Timeout, Of(fmt.Errorf("read: %w", Timeout)))
	assert.Equal(t, Identity, Of(Wrap(Identity, "tsl2591", nil)))
	assert.Equal(t, Error, Of(errors.New("boom")))
}

func TestWrappedCodeMatchesErrorsIs(t *testing.T) {
	err := fmt.Errorf("light: %w", Wrap(Timeout, "wait avalid", nil))
	assert.True(t, errors.Is(err, Timeout))
	assert.False(t, errors.Is(err, BusError))
	assert.Equal(t, "wait avalid: timeout", Wrap(Timeout, "wait avalid", nil).Error())
}

func TestMapDriverErr(t *testing.T) {
	assert.Equal(t, OK, MapDriverErr(nil))
	assert.Equal(t, BusError, MapDriverErr(errors.New("nack")))
	assert.Equal(t, Timeout, MapDriverErr(Timeout))
}
