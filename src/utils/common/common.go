package common

import (
	"context"

	"github.com/isopod-iot/sealer/src/utils/config"
)

type contextKey struct{}

var configKey = contextKey{}

// SetConfig attaches the configuration to the context
func SetConfig(ctx context.Context, config *config.Config) context.Context {
	return context.WithValue(ctx, configKey, config)
}

// GetConfig retrieves the configuration from the context
func GetConfig(ctx context.Context) *config.Config {
	return ctx.Value(configKey).(*config.Config)
}
