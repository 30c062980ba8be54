package sensors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseWrapsAndIsDeterministic(t *testing.T) {
	a, b := Phase{Step: 0.5}, Phase{Step: 0.5}
	for i := 0; i < 1000; i++ {
		va, vb := a.Next(), b.Next()
		assert.Equal(t, va, vb)
		assert.GreaterOrEqual(t, va, 0.0)
		assert.Less(t, va, 2*math.Pi)
	}
	a.Reset()
	assert.InDelta(t, 0.5, a.Next(), 1e-9)
}

func TestWaveClamps(t *testing.T) {
	assert.Equal(t, float32(28), Wave(25, 5, math.Pi/2, 20, 28))
	assert.Equal(t, float32(25), Wave(25, 3, 0, 20, 28))
}
