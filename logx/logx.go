// Package logx is the hub's logging capability.
//
// Components receive a Logger and never reach for a global one; the host
// build backs it with zerolog, the firmware build with println.
package logx

import "strings"

type Level uint8

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts debug, info, warn (or warning) and error.
func ParseLevel(s string) (Level, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return Warn, true
	}
	for i, n := range levelNames {
		if n == s {
			return Level(i), true
		}
	}
	return Info, false
}

// Field is a single key/value attached to a record.
type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger is fire-and-forget: it never fails and never blocks for long.
type Logger interface {
	Log(level Level, msg string, fields ...Field)
}

type nop struct{}

func (nop) Log(Level, string, ...Field) {}

// Nop discards everything.
func Nop() Logger { return nop{} }

type with struct {
	next   Logger
	fields []Field
}

func (w *with) Log(level Level, msg string, fields ...Field) {
	all := make([]Field, 0, len(w.fields)+len(fields))
	all = append(all, w.fields...)
	all = append(all, fields...)
	w.next.Log(level, msg, all...)
}

// With returns a Logger that prefixes every record with fields.
func With(l Logger, fields ...Field) Logger {
	if l == nil {
		return Nop()
	}
	if len(fields) == 0 {
		return l
	}
	return &with{next: l, fields: fields}
}

// OrNop substitutes Nop for a nil Logger.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}
