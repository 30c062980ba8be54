// Package sensors holds the backend contract shared by every sensor
// subsystem and the selector that binds one backend at startup.
package sensors

import (
	"fmt"

	"sensorhub-go/errcode"
	"sensorhub-go/logx"
	"sensorhub-go/types"
)

var (
	ErrConfig         error = errcode.Config
	ErrBackendInvalid error = errcode.BackendInvalid
	ErrNotInitialized error = errcode.NotInitialized
	ErrNilOutput      error = errcode.NilOutput
)

// Backend produces samples of type T.
type Backend[T any] interface {
	Init() error
	Read(out *T) error
}

// BackendFuncs is a Backend given as a pair of functions. It is only
// usable when both are set.
type BackendFuncs[T any] struct {
	InitFunc func() error
	ReadFunc func(out *T) error
}

func (b BackendFuncs[T]) Valid() bool { return b.InitFunc != nil && b.ReadFunc != nil }

func (b BackendFuncs[T]) Init() error {
	if !b.Valid() {
		return ErrBackendInvalid
	}
	return b.InitFunc()
}

func (b BackendFuncs[T]) Read(out *T) error {
	if !b.Valid() {
		return ErrBackendInvalid
	}
	return b.ReadFunc(out)
}

// validator is implemented by backends that can be structurally
// incomplete, such as BackendFuncs.
type validator interface{ Valid() bool }

func usable[T any](b Backend[T]) bool {
	if b == nil {
		return false
	}
	if v, ok := b.(validator); ok {
		return v.Valid()
	}
	return true
}

// Selector binds one of two backends according to the configured kind.
// Until Init succeeds it has no active backend and every Read fails with
// ErrNotInitialized.
type Selector[T any] struct {
	name   string
	kind   types.BackendKind
	sim    Backend[T]
	hw     Backend[T]
	log    logx.Logger
	active Backend[T]
}

func NewSelector[T any](name string, kind types.BackendKind, sim, hw Backend[T], log logx.Logger) *Selector[T] {
	return &Selector[T]{
		name: name,
		kind: kind,
		sim:  sim,
		hw:   hw,
		log:  logx.With(logx.OrNop(log), logx.F("subsystem", name)),
	}
}

func (s *Selector[T]) Name() string            { return s.name }
func (s *Selector[T]) Kind() types.BackendKind { return s.kind }
func (s *Selector[T]) Active() bool            { return s.active != nil }

// Init selects and initialises the configured backend. On any failure the
// selector is left without an active backend.
func (s *Selector[T]) Init() error {
	s.active = nil

	var b Backend[T]
	switch s.kind {
	case types.BackendSim:
		b = s.sim
	case types.BackendHW:
		b = s.hw
	default:
		s.log.Log(logx.Error, "invalid backend selection", logx.F("backend", s.kind.String()))
		return fmt.Errorf("%s: backend %q: %w", s.name, s.kind, ErrConfig)
	}
	if !usable(b) {
		s.log.Log(logx.Error, "backend descriptor invalid", logx.F("backend", s.kind.String()))
		return fmt.Errorf("%s: %s backend: %w", s.name, s.kind, ErrBackendInvalid)
	}
	if s.kind == types.BackendSim {
		s.log.Log(logx.Info, "using simulated backend")
	} else {
		s.log.Log(logx.Info, "using hardware backend")
	}
	if err := b.Init(); err != nil {
		s.log.Log(logx.Error, "backend init failed", logx.F("backend", s.kind.String()), logx.F("err", err))
		return fmt.Errorf("%s: %s init: %w", s.name, s.kind, err)
	}
	s.active = b
	return nil
}

// Read forwards to the active backend.
func (s *Selector[T]) Read(out *T) error {
	if s.active == nil {
		return ErrNotInitialized
	}
	if out == nil {
		return ErrNilOutput
	}
	return s.active.Read(out)
}
