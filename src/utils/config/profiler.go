package config

import (
	"github.com/spf13/viper"
)

type Profiler struct {
	// Exposes pprof endpoints on the gateway router
	Enabled bool
}

func setProfilerDefaults() {
	viper.SetDefault("Profiler.Enabled", "false")
}
