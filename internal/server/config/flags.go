package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/gophprovider/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN (empty: in-memory store)
//	-i string   SQLite DSN of the dishes catalogue
//	-s string   token HMAC secret key
//	-g string   token signing algorithm (HS256, HS384, HS512)
//	-t int      access token validity, minutes
//	-m int      failed login attempts before lockout
//	-l int      lockout duration, minutes
//	-v string   log level
//
// Only these flags are taken from args (see flagx.FilterArgs) so other
// components can share the command line. Duration flags are integers in
// minutes.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-i", "-s", "-g", "-t", "-m", "-l", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DishesDSN, "i", config.DishesDSN, "dishes catalogue DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.SigningAlgorithm, "g", config.SigningAlgorithm, "token signing algorithm")
	fs.IntVar(&config.MaxFailedAccessAttempts, "m", config.MaxFailedAccessAttempts, "failed login attempts before lockout")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	lockoutDuration := fs.Int("l", int(config.LockoutDuration.Minutes()), "lockout_duration (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
		case "l":
			config.LockoutDuration = time.Duration(*lockoutDuration) * time.Minute
		}
	})
}
