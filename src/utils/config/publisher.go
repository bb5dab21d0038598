package config

import (
	"time"

	"github.com/spf13/viper"
)

type Publisher struct {
	// Cron spec that drives the publication tick
	Schedule string

	// How many batches may be claimed in one tick
	MaxBatchesPerTick int

	// After this time a stuck in-progress tick is forcibly unlocked
	LockTimeout time.Duration

	// Name of the durable lease row guarding the tick across instances
	LeaseName string

	// How long an acquired lease is valid before it expires on its own
	LeaseDuration time.Duration

	// Blob publisher worker queue size
	WorkerQueueSize int

	// Journal flush settings
	JournalFlushInterval time.Duration
	JournalBatchSize     int
}

func setPublisherDefaults() {
	viper.SetDefault("Publisher.Schedule", "@every 1m")
	viper.SetDefault("Publisher.MaxBatchesPerTick", "5")
	viper.SetDefault("Publisher.LockTimeout", "5m")
	viper.SetDefault("Publisher.LeaseName", "publication-scheduler")
	viper.SetDefault("Publisher.LeaseDuration", "5m")
	viper.SetDefault("Publisher.WorkerQueueSize", "16")
	viper.SetDefault("Publisher.JournalFlushInterval", "5s")
	viper.SetDefault("Publisher.JournalBatchSize", "50")
}
