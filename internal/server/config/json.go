package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophprovider/internal/flagx"
	"github.com/dmitrijs2005/gophprovider/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted. Absent
// keys leave the corresponding Config field untouched.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	DishesDSN                   *string         `json:"dishes_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	SigningAlgorithm            *string         `json:"signing_algorithm"`
	Issuer                      *string         `json:"issuer"`
	Audience                    *string         `json:"audience"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	MaxFailedAccessAttempts     *int            `json:"max_failed_access_attempts"`
	LockoutDuration             *timex.Duration `json:"lockout_duration"`
	BcryptCost                  *int            `json:"bcrypt_cost"`
	Password                    *PasswordConfig `json:"password"`
	LogLevel                    *string         `json:"log_level"`
	LogFormat                   *string         `json:"log_format"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag in args. Without the flag nothing is loaded. An unreadable file
// or invalid JSON panics, since the server cannot start with a broken config.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.DishesDSN, c.DishesDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SigningAlgorithm, c.SigningAlgorithm)
	setString(&config.Issuer, c.Issuer)
	setString(&config.Audience, c.Audience)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.LockoutDuration != nil {
		config.LockoutDuration = c.LockoutDuration.Duration
	}
	if c.MaxFailedAccessAttempts != nil {
		config.MaxFailedAccessAttempts = *c.MaxFailedAccessAttempts
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.Password != nil {
		config.Password = *c.Password
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
