// Package config handles configuration for the server and the admin tool,
// including defaults, JSON overlay, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the provider API server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty means the non-durable in-memory store.
//   - DishesDSN: SQLite DSN for the dishes catalogue.
//   - SecretKey / SigningAlgorithm: HMAC key and algorithm (HS256, HS384, HS512)
//     for access tokens. Do not use test defaults in prod.
//   - Issuer / Audience: iss and aud of issued tokens.
//   - AccessTokenValidityDuration: access token lifetime.
//   - MaxFailedAccessAttempts / LockoutDuration: failed-login lockout policy.
//   - BcryptCost: password hashing cost.
//   - Password: minimum password strength rules.
type Config struct {
	EndpointAddrHTTP            string         `env:"GOPHPROVIDER_HTTP_ADDR"`
	DatabaseDSN                 string         `env:"GOPHPROVIDER_DATABASE_DSN"`
	DishesDSN                   string         `env:"GOPHPROVIDER_DISHES_DSN"`
	SecretKey                   string         `env:"GOPHPROVIDER_SECRET_KEY"`
	SigningAlgorithm            string         `env:"GOPHPROVIDER_SIGNING_ALGORITHM"`
	Issuer                      string         `env:"GOPHPROVIDER_TOKEN_ISSUER"`
	Audience                    string         `env:"GOPHPROVIDER_TOKEN_AUDIENCE"`
	AccessTokenValidityDuration time.Duration  `env:"GOPHPROVIDER_ACCESS_TOKEN_TTL"`
	MaxFailedAccessAttempts     int            `env:"GOPHPROVIDER_MAX_FAILED_ATTEMPTS"`
	LockoutDuration             time.Duration  `env:"GOPHPROVIDER_LOCKOUT_DURATION"`
	BcryptCost                  int            `env:"GOPHPROVIDER_BCRYPT_COST"`
	Password                    PasswordConfig `envPrefix:"GOPHPROVIDER_PASSWORD_"`
	LogLevel                    string         `env:"GOPHPROVIDER_LOG_LEVEL"`
	LogFormat                   string         `env:"GOPHPROVIDER_LOG_FORMAT"`
}

// PasswordConfig is the minimum-strength rule applied on registration.
type PasswordConfig struct {
	MinLength              int  `env:"MIN_LENGTH" json:"min_length"`
	RequireDigit           bool `env:"REQUIRE_DIGIT" json:"require_digit"`
	RequireLowercase       bool `env:"REQUIRE_LOWERCASE" json:"require_lowercase"`
	RequireUppercase       bool `env:"REQUIRE_UPPERCASE" json:"require_uppercase"`
	RequireNonAlphanumeric bool `env:"REQUIRE_NON_ALPHANUMERIC" json:"require_non_alphanumeric"`
	RequiredUniqueChars    int  `env:"REQUIRED_UNIQUE_CHARS" json:"required_unique_chars"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.DishesDSN = "file:dishes?mode=memory&cache=shared"
	c.SecretKey = "secretKey"
	c.SigningAlgorithm = "HS256"
	c.Issuer = "gophprovider"
	c.Audience = "https://localhost"
	c.AccessTokenValidityDuration = 1 * time.Hour
	c.MaxFailedAccessAttempts = 5
	c.LockoutDuration = 5 * time.Minute
	c.BcryptCost = 10
	c.Password = PasswordConfig{
		MinLength:              6,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
		RequireNonAlphanumeric: true,
		RequiredUniqueChars:    1,
	}
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key must not be empty"))
	}
	switch c.SigningAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("unsupported signing algorithm %q", c.SigningAlgorithm))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("access token validity must be positive"))
	}
	if c.MaxFailedAccessAttempts <= 0 {
		errs = append(errs, errors.New("max failed access attempts must be positive"))
	}
	if c.LockoutDuration <= 0 {
		errs = append(errs, errors.New("lockout duration must be positive"))
	}
	if c.Password.MinLength < 1 {
		errs = append(errs, errors.New("password min length must be at least 1"))
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	args := os.Args[1:]
	parseJson(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}
