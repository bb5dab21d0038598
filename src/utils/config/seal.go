package config

import (
	"time"

	"github.com/spf13/viper"
)

type Seal struct {
	// Key server endpoints, order matters for share indexing
	KeyServerUrls []string

	// How many key servers must cooperate to recover a key
	Threshold int

	// Session credential time to live
	SessionTTLMin int

	// HTTP timeout for a single key server call
	RequestTimeout time.Duration
}

func setSealDefaults() {
	viper.SetDefault("Seal.KeyServerUrls", "")
	viper.SetDefault("Seal.Threshold", "2")
	viper.SetDefault("Seal.SessionTTLMin", "10")
	viper.SetDefault("Seal.RequestTimeout", "30s")
}
