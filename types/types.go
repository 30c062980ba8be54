package types

// ------------------------
// Quantities & backends
// ------------------------

// Kind names a physical quantity sampled by the hub.
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindLight       Kind = "light"
	KindEnv         Kind = "env"
)

// BackendKind selects the data source of a subsystem. Exactly one is active
// per quantity; it is chosen once at startup and never changed at runtime.
type BackendKind uint8

const (
	BackendUnset BackendKind = iota
	BackendSim
	BackendHW
)

func (k BackendKind) String() string {
	switch k {
	case BackendSim:
		return "sim"
	case BackendHW:
		return "hw"
	default:
		return "unset"
	}
}

// ParseBackendKind accepts "sim"/"simulated" and "hw"/"hardware".
func ParseBackendKind(s string) (BackendKind, bool) {
	switch s {
	case "sim", "simulated":
		return BackendSim, true
	case "hw", "hardware":
		return BackendHW, true
	}
	return BackendUnset, false
}
