// Package power owns the hub's power mode.
//
// Update is the only place a transition happens. Within one Update a
// pending operator request wins over noted activity, and noted activity
// wins over the idle policy. The manager is owned by the scheduler
// goroutine; Request and NoteActivity must be called from it too.
package power

import (
	"sensorhub-go/errcode"
	"sensorhub-go/logx"
	"sensorhub-go/services/telemetry"
	"sensorhub-go/types"
)

var ErrInvalidMode error = errcode.InvalidMode

// Policy holds the idle-cycle thresholds of the automatic transitions.
// A zero threshold disables that step.
type Policy struct {
	IdleAfter  uint32 `mapstructure:"idle_after"`  // ACTIVE -> IDLE
	SleepAfter uint32 `mapstructure:"sleep_after"` // IDLE -> SLEEP
	StopAfter  uint32 `mapstructure:"stop_after"`  // SLEEP -> STOP
}

// DefaultPolicy at the default 500 ms update period: IDLE after 30 s
// without activity, SLEEP after 2 min, STOP only on request.
func DefaultPolicy() Policy {
	return Policy{IdleAfter: 60, SleepAfter: 240}
}

type Manager struct {
	policy Policy
	log    logx.Logger
	tel    telemetry.Collector

	mode       types.PowerMode
	idleCycles uint32
	activity   bool
	pending    types.PowerMode
	hasPending bool
}

func New(policy Policy, log logx.Logger, tel telemetry.Collector) *Manager {
	if tel == nil {
		tel = telemetry.Noop()
	}
	return &Manager{policy: policy, log: logx.OrNop(log), tel: tel}
}

// Init enters ACTIVE and clears counters and pending input.
func (m *Manager) Init() {
	m.mode = types.PowerActive
	m.idleCycles = 0
	m.activity = false
	m.hasPending = false
	m.tel.ModeChanged("", m.mode.String())
	m.log.Log(logx.Info, "power manager initialised", logx.F("mode", m.mode.String()))
}

func (m *Manager) CurrentMode() types.PowerMode { return m.mode }

// IdleCycles is the number of consecutive updates without activity.
func (m *Manager) IdleCycles() uint32 { return m.idleCycles }

// NoteActivity marks the device busy; the next Update returns to ACTIVE.
func (m *Manager) NoteActivity() { m.activity = true }

// Request queues an operator-requested mode for the next Update.
func (m *Manager) Request(mode types.PowerMode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}
	m.pending = mode
	m.hasPending = true
	return nil
}

// Update evaluates pending input and the idle policy once.
func (m *Manager) Update() {
	switch {
	case m.hasPending:
		m.hasPending = false
		m.activity = false
		m.idleCycles = 0
		m.transition(m.pending, "request")
		return
	case m.activity:
		m.activity = false
		m.idleCycles = 0
		m.transition(types.PowerActive, "activity")
		return
	}

	if m.idleCycles < ^uint32(0) {
		m.idleCycles++
	}
	switch m.mode {
	case types.PowerActive:
		if reached(m.idleCycles, m.policy.IdleAfter) {
			m.transition(types.PowerIdle, "idle")
		}
	case types.PowerIdle:
		if reached(m.idleCycles, m.policy.SleepAfter) {
			m.transition(types.PowerSleep, "idle")
		}
	case types.PowerSleep:
		if reached(m.idleCycles, m.policy.StopAfter) {
			m.transition(types.PowerStop, "idle")
		}
	}
}

func reached(cycles, threshold uint32) bool {
	return threshold != 0 && cycles >= threshold
}

func (m *Manager) transition(to types.PowerMode, reason string) {
	if to == m.mode {
		return
	}
	from := m.mode
	m.mode = to
	m.tel.ModeChanged(from.String(), to.String())
	m.log.Log(logx.Info, "power mode changed",
		logx.F("from", from.String()), logx.F("to", to.String()), logx.F("reason", reason))
}
