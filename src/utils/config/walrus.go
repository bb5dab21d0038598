package config

import (
	"time"

	"github.com/spf13/viper"
)

type Walrus struct {
	// Publisher endpoint, blobs are uploaded there
	PublisherUrl string

	// Aggregator endpoint, blobs are downloaded from there
	AggregatorUrl string

	// Retention measured in storage epochs
	StoreEpochs int

	// Whether uploaded blobs may be deleted before retention ends
	Deletable bool

	// HTTP timeout for a single blob operation
	RequestTimeout time.Duration

	// Requests per second towards the storage network
	LimiterRps float64
}

func setWalrusDefaults() {
	viper.SetDefault("Walrus.PublisherUrl", "https://publisher.walrus-testnet.walrus.space")
	viper.SetDefault("Walrus.AggregatorUrl", "https://aggregator.walrus-testnet.walrus.space")
	viper.SetDefault("Walrus.StoreEpochs", "3")
	viper.SetDefault("Walrus.Deletable", "true")
	viper.SetDefault("Walrus.RequestTimeout", "60s")
	viper.SetDefault("Walrus.LimiterRps", "5")
}
