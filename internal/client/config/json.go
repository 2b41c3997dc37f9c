package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/devconnector/internal/flagx"
	"github.com/dmitrijs2005/devconnector/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// are timex.Duration so "3s" and integer nanoseconds both work.
type JsonConfig struct {
	ServerURL           string          `json:"server_url"`
	DatabasePath        string          `json:"database_path"`
	RequestTimeout      timex.Duration  `json:"request_timeout"`
	AlertTimeout        *timex.Duration `json:"alert_timeout"`
	OnlineCheckInterval timex.Duration  `json:"online_check_interval"`
	LogLevel            string          `json:"log_level"`
}

// parseJson overlays cfg with the non-zero values of the file named by
// -c or -config. Read or unmarshal errors panic.
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

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	// an explicit zero disables alert expiry, so presence matters here
	if jc.AlertTimeout != nil {
		cfg.AlertTimeout = jc.AlertTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
