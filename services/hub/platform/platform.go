// Package platform opens the board resources the hub runs on: buses for
// the hardware backends, the heartbeat pin and the operator console.
//
// Open is implemented per target: rp2 (machine + uartx), Linux (periph)
// and a bus-less host fallback. Missing buses are left nil; hardware
// backends on a nil bus fail their Init and the subsystem degrades.
package platform

import (
	"context"
	"io"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"tinygo.org/x/drivers"

	"sensorhub-go/drivers/regio"
	"sensorhub-go/services/heartbeat"
)

type Resources struct {
	I2C        drivers.I2C
	SPI        drivers.SPI
	ChipSelect regio.ChipSelect
	LED        heartbeat.Pin

	// Out receives console output.
	Out io.Writer
	// In, when set, is read by the console until it fails.
	In io.Reader
	// Pump, when set, forwards console input to feed until ctx is done.
	// It takes precedence over In.
	// It blocks and is meant to run on its own goroutine.
	Pump func(ctx context.Context, feed func([]byte))

	closers []func() error
}

func (r *Resources) onClose(f func() error) { r.closers = append(r.closers, f) }

// Close releases everything Open acquired, in reverse order.
func (r *Resources) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, r.closers[i]())
	}
	r.closers = nil
	return err
}

// ParseGP turns an rp2 pin name such as "GP25" (or a bare "25") into its
// number.
func ParseGP(name string) (int, bool) {
	s := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "GP")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 47 {
		return 0, false
	}
	return n, true
}
