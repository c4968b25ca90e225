package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-r string   Redis URL ("" disables Redis)
//	-s string   JWT HMAC secret key
//	-t int      session validity, hours
//	-i int      invitation retention, hours
//	-l string   log level
//
// Only these flags are read from os.Args; anything else is left for other
// components.
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionHours := fs.Int("t", int(config.SessionValidityDuration.Hours()), "session validity (in hours)")
	retentionHours := fs.Int("i", int(config.InvitationRetention.Hours()), "invitation retention (in hours)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := flagx.ParseOwn(fs); err != nil {
		panic(err)
	}

	// Hour flags only override when given, so finer values from earlier
	// layers survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionValidityDuration = time.Duration(*sessionHours) * time.Hour
		case "i":
			config.InvitationRetention = time.Duration(*retentionHours) * time.Hour
		}
	})
}
