//go:build !(rp2040 || rp2350)

package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the host log level and output format ("json" or "text").
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Setup creates a zerolog logger according to cfg. A nil out means stdout.
func Setup(cfg Config, out io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, ok := ParseLevel(cfg.Level)
		if !ok {
			return zerolog.Logger{}, fmt.Errorf("parse log level: unknown level %q", cfg.Level)
		}
		parsed, err := zerolog.ParseLevel(l.String())
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(cfg.Format, "text") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Logger().Level(level), nil
}

type zl struct{ l zerolog.Logger }

// Zerolog adapts a zerolog.Logger to Logger.
func Zerolog(l zerolog.Logger) Logger { return zl{l: l} }

func (z zl) Log(level Level, msg string, fields ...Field) {
	var ev *zerolog.Event
	switch level {
	case Debug:
		ev = z.l.Debug()
	case Warn:
		ev = z.l.Warn()
	case Error:
		ev = z.l.Error()
	default:
		ev = z.l.Info()
	}
	if ev == nil {
		return
	}
	for _, f := range fields {
		switch v := f.Value.(type) {
		case error:
			ev = ev.AnErr(f.Key, v)
		case fmt.Stringer:
			ev = ev.Stringer(f.Key, v)
		default:
			ev = ev.Interface(f.Key, v)
		}
	}
	ev.Msg(msg)
}
