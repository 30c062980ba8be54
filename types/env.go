package types

// ------------------------
// Samples (value objects; produced per read, never retained)
// ------------------------

// TemperatureSample is a single temperature reading.
type TemperatureSample struct {
	Celsius     float32 `json:"celsius"`
	TimestampMs uint32  `json:"ts_ms"`
}

// LightSample is a single ambient light reading with the raw channel counts.
type LightSample struct {
	Lux         float32 `json:"lux"`
	Full        uint16  `json:"full"` // CH0, full spectrum
	IR          uint16  `json:"ir"`   // CH1, infrared
	TimestampMs uint32  `json:"ts_ms"`
}

// EnvSample is a temperature/pressure/humidity triplet.
type EnvSample struct {
	TemperatureC float32 `json:"temperature_c"`
	PressurePa   float32 `json:"pressure_pa"`
	HumidityRH   float32 `json:"humidity_rh"` // 0..100
	TimestampMs  uint32  `json:"ts_ms"`
}
