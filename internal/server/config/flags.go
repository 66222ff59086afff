package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-g string   gRPC health bind address (empty disables)
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      reset code validity, minutes
//	-dev        development mode
//	-m string   mail transport: smtp, s3 or log
//
// Durations are accepted as integer minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(args(), []string{"-a", "-g", "-d", "-s", "-t", "-r", "-dev", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "address and port of the gRPC health service")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	resetCodeValidity := fs.Int("r", int(config.ResetCodeValidityDuration.Minutes()), "reset code validity (in minutes)")

	fs.BoolVar(&config.DevMode, "dev", config.DevMode, "development mode")
	fs.StringVar(&config.MailTransport, "m", config.MailTransport, "mail transport (smtp, s3, log)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.ResetCodeValidityDuration = time.Duration(*resetCodeValidity) * time.Minute
}
