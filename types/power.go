package types

import "strings"

// ------------------------
// Power modes
// ------------------------

// PowerMode is ordered by decreasing activity.
type PowerMode uint8

const (
	PowerActive PowerMode = iota
	PowerIdle
	PowerSleep
	PowerStop

	NumPowerModes = 4
)

var powerModeNames = [NumPowerModes]string{"ACTIVE", "IDLE", "SLEEP", "STOP"}

func (m PowerMode) String() string {
	if m.Valid() {
		return powerModeNames[m]
	}
	return "UNKNOWN"
}

// Valid reports whether m is one of the four defined modes.
func (m PowerMode) Valid() bool { return m < NumPowerModes }

// ParsePowerMode is case-insensitive for the ASCII mode names.
func ParsePowerMode(s string) (PowerMode, bool) {
	for i, n := range powerModeNames {
		if strings.EqualFold(s, n) {
			return PowerMode(i), true
		}
	}
	return 0, false
}
