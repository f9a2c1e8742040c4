// Package config holds runtime settings for applications embedding the
// session lifecycle library. Loading order is defaults, then JSON file
// overlay, then command-line flags; later sources win.
package config

import (
	"time"

	"github.com/dmitrijs2005/sessionkeeper/auth"
)

// Config holds the settings presentation code needs to wire the
// library: where local state lives, where the remote verifier is, and
// the lifecycle tuning knobs.
type Config struct {
	// DatabaseDSN is the SQLite DSN for local state.
	DatabaseDSN string

	// VerifierURL is the remote verifier endpoint.
	VerifierURL string

	SessionTTL        time.Duration
	RenewalWindow     time.Duration
	RemoteTimeout     time.Duration
	VerifyMinInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "sessions.db"
	c.VerifierURL = "http://127.0.0.1:8080/api"
	c.SessionTTL = auth.DefaultSessionTTL
	c.RenewalWindow = auth.DefaultRenewalWindow
	c.RemoteTimeout = auth.DefaultRemoteTimeout
	c.VerifyMinInterval = 0
}

// AuthOptions maps the tuning knobs onto manager options.
func (c *Config) AuthOptions() auth.Options {
	return auth.Options{
		SessionTTL:        c.SessionTTL,
		RenewalWindow:     c.RenewalWindow,
		RemoteTimeout:     c.RemoteTimeout,
		VerifyMinInterval: c.VerifyMinInterval,
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays
// values from JSON (if a config file was given) and command-line
// flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
