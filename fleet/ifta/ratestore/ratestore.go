// Package ratestore loads per-jurisdiction IFTA tax rates from a TOML file.
// Rates change quarterly and are published per jurisdiction, so they live in
// configuration rather than code.
package ratestore

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fleetscope/fleet-app/fleet/ifta"
)

// File is the on-disk shape of a quarterly rate table:
//
//	year = 2024
//	quarter = 2
//
//	[rates]
//	IA = 0.325
//	NE = 0.296
type File struct {
	Year    int                `toml:"year"`
	Quarter int                `toml:"quarter"`
	Rates   map[string]float64 `toml:"rates"`
}

// Load reads and validates a rate table file for one quarter.
func Load(path string) (int, int, ifta.RateTable, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return 0, 0, nil, errors.Wrapf(err, "could not read rate table %s", path)
	}

	if f.Quarter < 1 || f.Quarter > 4 {
		return 0, 0, nil, errors.Errorf("rate table %s has invalid quarter %d", path, f.Quarter)
	}
	if len(f.Rates) == 0 {
		return 0, 0, nil, errors.Errorf("rate table %s contains no rates", path)
	}

	table := make(ifta.RateTable, len(f.Rates))
	for jurisdiction, rate := range f.Rates {
		if rate < 0 {
			return 0, 0, nil, errors.Errorf("rate table %s has a negative rate for %s", path, jurisdiction)
		}
		table[jurisdiction] = decimal.NewFromFloat(rate)
	}

	return f.Year, f.Quarter, table, nil
}
