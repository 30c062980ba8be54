//go:build !(rp2040 || rp2350)

package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadFile overlays a config file on a compiled-in profile. The file may
// name its base with a top-level "profile" key; otherwise profile is used.
// An empty path looks for sensorhub.{yaml,json,toml} under ./configs.
func LoadFile(path, profile string) (HubConfig, error) {
	v := viper.New()
	if path == "" {
		v.AddConfigPath("configs")
		v.SetConfigName("sensorhub")
	} else {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		return HubConfig{}, fmt.Errorf("read config: %v: %w", err, ErrConfig)
	}
	if p := v.GetString("profile"); p != "" {
		profile = p
	}
	if profile == "" {
		profile = ProfileSim
	}
	cfg, ok := Profile(profile)
	if !ok {
		return HubConfig{}, fmt.Errorf("unknown profile %q: %w", profile, ErrConfig)
	}
	// A file using the flag pair replaces the profile's selection rather
	// than conflicting with it.
	for key, sub := range map[string]*Subsystem{
		"temperature": &cfg.Temperature,
		"light":       &cfg.Light,
		"env":         &cfg.Env,
	} {
		if !v.IsSet(key+".backend") && (v.IsSet(key+".use_sim") || v.IsSet(key+".use_hw")) {
			sub.Backend = ""
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return HubConfig{}, fmt.Errorf("decode config: %v: %w", err, ErrConfig)
	}
	cfg.Profile = profile
	return cfg, nil
}
