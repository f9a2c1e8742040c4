package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   SQLite DSN for local state
//	-r string   remote verifier endpoint URL
//	-s int      session lifetime in minutes
//
// Arguments are filtered through flagx.FilterArgs so flags owned by the
// host application pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "SQLite DSN for local state")
	fs.StringVar(&cfg.VerifierURL, "r", cfg.VerifierURL, "remote verifier endpoint URL")
	sessionMinutes := fs.Int("s", int(cfg.SessionTTL.Minutes()), "session lifetime (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SessionTTL = time.Duration(*sessionMinutes) * time.Minute
}
