package config

import (
	"github.com/spf13/viper"
)

type Cipherbox struct {
	// Path to the 32 byte symmetric key used for staged payloads
	KeyPath string
}

func setCipherboxDefaults() {
	viper.SetDefault("Cipherbox.KeyPath", "encryption.key")
}
