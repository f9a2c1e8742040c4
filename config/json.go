package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/sessionkeeper/flagx"
	"github.com/dmitrijs2005/sessionkeeper/timex"
)

// JsonConfig is the DTO for JSON unmarshalling. timex.Duration lets
// files spell intervals either as strings like "60m" or as integer
// nanoseconds.
type JsonConfig struct {
	DatabaseDSN       string         `json:"database_dsn"`
	VerifierURL       string         `json:"verifier_url"`
	SessionTTL        timex.Duration `json:"session_ttl"`
	RenewalWindow     timex.Duration `json:"renewal_window"`
	RemoteTimeout     timex.Duration `json:"remote_timeout"`
	VerifyMinInterval timex.Duration `json:"verify_min_interval"`
}

// parseJson overlays cfg with values from the JSON file named by the
// -c/-config flags. If no file was given, it is a no-op. Read or
// unmarshal errors panic; configuration problems should stop startup.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.VerifierURL != "" {
		cfg.VerifierURL = jc.VerifierURL
	}
	if jc.SessionTTL.Duration != 0 {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	if jc.RenewalWindow.Duration != 0 {
		cfg.RenewalWindow = jc.RenewalWindow.Duration
	}
	if jc.RemoteTimeout.Duration != 0 {
		cfg.RemoteTimeout = jc.RemoteTimeout.Duration
	}
	if jc.VerifyMinInterval.Duration != 0 {
		cfg.VerifyMinInterval = jc.VerifyMinInterval.Duration
	}
}
