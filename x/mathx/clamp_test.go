package mathx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(5, 0, 10))
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(12, 0, 10))
	assert.Equal(t, 10, Clamp(12, 10, 0))
	assert.Equal(t, float32(28), Clamp(float32(28.4), 20, 28))
}

func TestWrapPhase(t *testing.T) {
	twoPi := 2 * math.Pi
	assert.InDelta(t, 0.5, Wrap(twoPi+0.5, twoPi), 1e-12)
	assert.InDelta(t, 1.0, Wrap(1.0, twoPi), 1e-12)
	assert.InDelta(t, twoPi-1, Wrap(-1.0, twoPi), 1e-12)
}
