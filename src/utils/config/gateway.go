package config

import (
	"time"

	"github.com/spf13/viper"
)

type Gateway struct {
	// REST API listen address
	ListenAddress string

	// Account transportation walk is cached this long
	AccountCacheTTL time.Duration

	// Expired cache entries are purged this often
	AccountCacheCleanup time.Duration
}

func setGatewayDefaults() {
	viper.SetDefault("Gateway.ListenAddress", ":8080")
	viper.SetDefault("Gateway.AccountCacheTTL", "30s")
	viper.SetDefault("Gateway.AccountCacheCleanup", "5m")
}
