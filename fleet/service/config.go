package service

import (
	"github.com/fleetscope/fleet-app/conf"
)

type Config struct {
	// Trailing window of duty logs loaded into the compliance snapshot for
	// the HOS evaluator.
	HOSLookbackDays int `conf:"FLEET_HOS_LOOKBACK_DAYS" conf_default:"30"`

	// Window within which a manually edited log is treated as a violation
	// by the edited-log heuristic.
	EditedLogLookbackDays int `conf:"FLEET_HOS_EDITED_LOG_LOOKBACK_DAYS" conf_default:"7"`

	// Location of the quarterly per-jurisdiction tax rate file.
	RateFilePath string `conf:"FLEET_IFTA_RATE_FILE" conf_default:"./shared_files/ifta_rates.toml"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := conf.Checkout(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
