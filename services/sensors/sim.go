package sensors

import (
	"math"

	"sensorhub-go/x/mathx"
)

// Phase is the accumulator behind the simulated backends: every Next
// advances it by a fixed step and folds it back into [0, 2π).
type Phase struct {
	Step  float64
	value float64
}

func (p *Phase) Reset() { p.value = 0 }

// Next advances the phase and returns the new value.
func (p *Phase) Next() float64 {
	p.value = mathx.Wrap(p.value+p.Step, 2*math.Pi)
	return p.value
}

// Wave returns base + amp·sin(phase) clamped to [lo, hi].
func Wave(base, amp, phase, lo, hi float64) float32 {
	return float32(mathx.Clamp(base+amp*math.Sin(phase), lo, hi))
}
