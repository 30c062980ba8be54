package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. Swapped bounds are tolerated.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	return Max(lo, Min(v, hi))
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Wrap folds v back into [0, period) after it has been advanced past period.
// Only forward steps are expected, so a single subtraction loop is enough.
func Wrap[T constraints.Float](v, period T) T {
	if period <= 0 {
		return v
	}
	for v >= period {
		v -= period
	}
	for v < 0 {
		v += period
	}
	return v
}
