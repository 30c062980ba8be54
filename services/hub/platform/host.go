//go:build !linux && !rp2040 && !rp2350

package platform

import (
	"os"

	"sensorhub-go/logx"
	"sensorhub-go/services/config"
	"sensorhub-go/services/heartbeat"
)

// Open on hosts without a bus provider returns console and LED only.
// Hardware backends will fail their Init.
func Open(cfg config.Buses, log logx.Logger) (*Resources, error) {
	if cfg.I2C != "" || cfg.SPI != "" {
		logx.OrNop(log).Log(logx.Warn, "no bus provider on this host; hardware backends unavailable")
	}
	return &Resources{
		LED:  &heartbeat.MemPin{},
		Out:  os.Stdout,
		In:   os.Stdin,
	}, nil
}
