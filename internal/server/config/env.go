package config

import (
	"github.com/caarlos0/env/v11"
)

// parseEnv overlays GOPHPROVIDER_* environment variables onto config.
// Variables that are not set leave the current values in place.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
