package ratestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func writeRateFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.toml")
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeRateFile(t, `
year = 2024
quarter = 2

[rates]
IA = 0.325
NE = 0.296
`)

	year, quarter, table, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 2, quarter)
	assert.Len(t, table, 2)
	assert.True(t, table["IA"].Equal(decimal.NewFromFloat(0.325)))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"invalid quarter", "year = 2024\nquarter = 5\n[rates]\nIA = 0.325\n"},
		{"no rates", "year = 2024\nquarter = 1\n"},
		{"negative rate", "year = 2024\nquarter = 1\n[rates]\nIA = -0.1\n"},
		{"not toml", "{\"year\": 2024}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := Load(writeRateFile(t, tt.contents))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
