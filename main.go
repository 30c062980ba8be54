//go:build rp2040 || rp2350

package main

import (
	"context"
	"time"

	"sensorhub-go/logx"
	"sensorhub-go/services/config"
	"sensorhub-go/services/hub"
	"sensorhub-go/services/hub/platform"
	"sensorhub-go/services/telemetry"
)

// profile is the compiled-in configuration. Override at build time with
// -ldflags "-X main.profile=pico_hw".
var profile = config.ProfileSim

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)

	cfg, ok := config.Profile(profile)
	if !ok {
		halt("unknown profile " + profile)
	}
	level, _ := logx.ParseLevel(cfg.Log.Level)
	log := logx.Console(level)

	res, err := platform.Open(cfg.Buses, log)
	if err != nil {
		log.Log(logx.Error, "platform incomplete", logx.F("err", err))
	}

	h, err := hub.New(cfg, res, log, hub.WithCollector(telemetry.NewCounters()))
	if err != nil {
		halt("config: " + err.Error())
	}
	if err := h.Init(); err != nil {
		halt("init: " + err.Error())
	}
	_ = h.Run(context.Background())
}

// halt parks the firmware after a fatal startup error, repeating the
// message so a late-attached console still sees it.
func halt(msg string) {
	for {
		println("[FATAL]", msg)
		time.Sleep(5 * time.Second)
	}
}
