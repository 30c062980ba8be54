package heartbeat

import (
	"sensorhub-go/logx"
	"sensorhub-go/x/timex"
)

// Pin is the status LED, or anything else that can be flipped.
type Pin interface {
	Toggle()
}

// MemPin is an in-memory pin for targets without an LED.
type MemPin struct{ On bool }

func (p *MemPin) Toggle() { p.On = !p.On }

// Service toggles the pin and logs a beat on every Tick.
type Service struct {
	pin   Pin
	clock timex.Clock
	log   logx.Logger
	beats uint32
}

func New(pin Pin, clock timex.Clock, log logx.Logger) *Service {
	if pin == nil {
		pin = &MemPin{}
	}
	return &Service{pin: pin, clock: clock, log: logx.OrNop(log)}
}

// Tick is the task body.
func (s *Service) Tick() {
	s.pin.Toggle()
	s.beats++
	s.log.Log(logx.Debug, "heartbeat", logx.F("beat", s.beats), logx.F("ts_ms", s.clock.NowMs()))
}

func (s *Service) Beats() uint32 { return s.beats }
