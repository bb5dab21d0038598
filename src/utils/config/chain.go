package config

import (
	"time"

	"github.com/spf13/viper"
)

type Chain struct {
	// Fullnode JSON-RPC endpoint
	RpcUrl string

	// Network selector, informational only (testnet, mainnet)
	Network string

	// Package that holds the allowlist contract
	PackageId string

	// Module within the package
	AllowlistModule string

	// Gas budget attached to every transaction
	GasBudget uint64

	// Wallet private key as an OKP (Ed25519) JWK
	WalletJwk string

	// Path to a file with the wallet JWK, used when WalletJwk is empty
	WalletJwkPath string

	// HTTP timeout for a single RPC call
	RequestTimeout time.Duration

	// Max total time to wait for transaction effects to become queryable
	EffectsMaxElapsedTime time.Duration

	// Max interval between effect polling attempts
	EffectsMaxInterval time.Duration

	// How long the reference gas price may be cached
	GasPriceCacheTTL time.Duration

	// Requests per second towards the fullnode
	LimiterRps float64
}

func setChainDefaults() {
	viper.SetDefault("Chain.RpcUrl", "https://fullnode.testnet.sui.io")
	viper.SetDefault("Chain.Network", "testnet")
	viper.SetDefault("Chain.PackageId", "")
	viper.SetDefault("Chain.AllowlistModule", "allowlist")
	viper.SetDefault("Chain.GasBudget", "100000000")
	viper.SetDefault("Chain.WalletJwk", "")
	viper.SetDefault("Chain.WalletJwkPath", "")
	viper.SetDefault("Chain.RequestTimeout", "30s")
	viper.SetDefault("Chain.EffectsMaxElapsedTime", "60s")
	viper.SetDefault("Chain.EffectsMaxInterval", "8s")
	viper.SetDefault("Chain.GasPriceCacheTTL", "1m")
	viper.SetDefault("Chain.LimiterRps", "10")
}
