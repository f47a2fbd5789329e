package ifta

import (
	"testing"
	"time"

	"github.com/pborman/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fleetscope/fleet-app/fleet/constants"
	customErrors "github.com/fleetscope/fleet-app/fleet/errors"
	"github.com/fleetscope/fleet-app/fleet/models"
)

func TestQuarterDueDate(t *testing.T) {
	tests := []struct {
		quarter int
		want    time.Time
	}{
		{1, time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC)},
		{2, time.Date(2024, time.July, 31, 0, 0, 0, 0, time.UTC)},
		{3, time.Date(2024, time.October, 31, 0, 0, 0, 0, time.UTC)},
		// Q4 is due in the following calendar year.
		{4, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QuarterDueDate(2024, tt.quarter))
	}

	assert.True(t, QuarterDueDate(2024, 0).IsZero())
	assert.True(t, QuarterDueDate(2024, 5).IsZero())
}

func trip(jurisdiction string, miles float64) models.TripRecord {
	return models.TripRecord{ID: uuid.NewRandom(), Jurisdiction: jurisdiction, Miles: miles}
}

func purchase(jurisdiction string, gallons float64) models.FuelPurchase {
	return models.FuelPurchase{ID: uuid.NewRandom(), Jurisdiction: jurisdiction, Gallons: gallons}
}

func TestBuildCalculations(t *testing.T) {
	reportID := uuid.NewRandom()
	rates := RateTable{
		"IA": decimal.NewFromFloat(0.30),
		"NE": decimal.NewFromFloat(0.20),
	}

	trips := []models.TripRecord{
		trip("IA", 600),
		trip("IA", 400),
		trip("NE", 500),
	}
	fuel := []models.FuelPurchase{
		purchase("IA", 250),
		purchase("NE", 50),
	}

	calcs, err := BuildCalculations(reportID, trips, fuel, rates)
	assert.NoError(t, err)
	assert.Len(t, calcs, 2)

	// Fleet economy: 1500 miles / 300 gallons = 5 MPG.
	ia, ne := calcs[0], calcs[1]
	assert.Equal(t, "IA", ia.Jurisdiction)
	assert.Equal(t, 1000.0, ia.TotalMiles)
	assert.Equal(t, 1000.0, ia.TaxableMiles)
	assert.Equal(t, 250.0, ia.FuelPurchased)
	assert.InDelta(t, 200.0, ia.FuelConsumed, 0.001)
	// 50 more gallons bought than burned: a credit of 50 * 0.30.
	assert.True(t, ia.TaxDue.Equal(decimal.NewFromFloat(-15.00)), "got %s", ia.TaxDue)
	assert.True(t, ia.NetTaxDue.Equal(decimal.NewFromFloat(-15.00)))
	assert.False(t, ia.IsValidated)

	assert.Equal(t, "NE", ne.Jurisdiction)
	assert.InDelta(t, 100.0, ne.FuelConsumed, 0.001)
	assert.True(t, ne.TaxDue.Equal(decimal.NewFromFloat(10.00)), "got %s", ne.TaxDue)
}

func TestBuildCalculationsNoFuel(t *testing.T) {
	calcs, err := BuildCalculations(uuid.NewRandom(), []models.TripRecord{trip("IA", 500)}, nil, RateTable{})
	assert.NoError(t, err)
	assert.Len(t, calcs, 1)
	assert.Equal(t, 0.0, calcs[0].FuelConsumed)
	assert.True(t, calcs[0].TaxDue.IsZero())
	// The implausible result is left for validation to flag.
	assert.False(t, ValidateCalculation(calcs[0]).Valid)
}

func TestBuildCalculationsRejectsNegativeInputs(t *testing.T) {
	_, err := BuildCalculations(uuid.NewRandom(), []models.TripRecord{trip("IA", -10)}, nil, RateTable{})
	var validationErr *customErrors.EntityValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "trip_record", validationErr.EntityType)

	_, err = BuildCalculations(uuid.NewRandom(), nil, []models.FuelPurchase{purchase("IA", -5)}, RateTable{})
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "fuel_purchase", validationErr.EntityType)
}

func plausibleCalculation() models.JurisdictionTaxCalculation {
	return models.JurisdictionTaxCalculation{
		ID:            uuid.NewRandom(),
		Jurisdiction:  "IA",
		TotalMiles:    1000,
		TaxableMiles:  1000,
		FuelPurchased: 150,
		FuelConsumed:  160,
		TaxRate:       decimal.NewFromFloat(0.30),
		TaxDue:        decimal.NewFromFloat(3.00),
		TaxCredits:    decimal.Zero,
		Adjustments:   decimal.Zero,
		NetTaxDue:     decimal.NewFromFloat(3.00),
	}
}

func TestValidateCalculation(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*models.JurisdictionTaxCalculation)
		wantValid    bool
		wantWarnings int
	}{
		{"plausible", func(c *models.JurisdictionTaxCalculation) {}, true, 0},
		{"mpg too low", func(c *models.JurisdictionTaxCalculation) { c.FuelConsumed = 500 }, false, 1},
		{"mpg too high", func(c *models.JurisdictionTaxCalculation) { c.FuelConsumed = 60 }, false, 1},
		{"mpg at lower bound", func(c *models.JurisdictionTaxCalculation) { c.TotalMiles, c.FuelConsumed = 960, 320 }, true, 0},
		{"mpg at upper bound", func(c *models.JurisdictionTaxCalculation) { c.TotalMiles, c.FuelConsumed = 960, 80 }, true, 0},
		{"rate too low", func(c *models.JurisdictionTaxCalculation) { c.TaxRate = decimal.NewFromFloat(0.01) }, false, 1},
		{"rate too high", func(c *models.JurisdictionTaxCalculation) { c.TaxRate = decimal.NewFromFloat(0.75) }, false, 1},
		{"negative purchased", func(c *models.JurisdictionTaxCalculation) { c.FuelPurchased = -1 }, false, 1},
		{
			"all checks reported, not just the first",
			func(c *models.JurisdictionTaxCalculation) {
				c.FuelConsumed = 500
				c.FuelPurchased = -1
				c.TaxRate = decimal.NewFromFloat(0.01)
			},
			false, 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := plausibleCalculation()
			tt.mutate(&calc)
			result := ValidateCalculation(calc)
			assert.Equal(t, tt.wantValid, result.Valid)
			assert.Len(t, result.Warnings, tt.wantWarnings)
		})
	}
}

func TestValidateSetsFlag(t *testing.T) {
	calc := plausibleCalculation()
	result := Validate(&calc)
	assert.True(t, result.Valid)
	assert.True(t, calc.IsValidated)

	calc.TaxRate = decimal.NewFromFloat(0.01)
	result = Validate(&calc)
	assert.False(t, result.Valid)
	assert.False(t, calc.IsValidated)
}

func TestApplyAdjustmentResetsValidation(t *testing.T) {
	calc := plausibleCalculation()
	Validate(&calc)
	assert.True(t, calc.IsValidated)

	ApplyAdjustment(&calc, decimal.NewFromFloat(5.25), decimal.NewFromFloat(1.00))

	assert.False(t, calc.IsValidated, "an edited calculation must be re-validated")
	assert.True(t, calc.NetTaxDue.Equal(decimal.NewFromFloat(7.25)), "got %s", calc.NetTaxDue)

	// Re-validation restores submittability.
	result := Validate(&calc)
	assert.True(t, result.Valid)
	assert.True(t, calc.IsValidated)
}

func validatedReport() models.IFTAReport {
	one := plausibleCalculation()
	two := plausibleCalculation()
	two.Jurisdiction = "NE"
	Validate(&one)
	Validate(&two)

	return models.IFTAReport{
		ID:           uuid.NewRandom(),
		Year:         2024,
		Quarter:      2,
		Status:       constants.ReportDraft,
		Calculations: []models.JurisdictionTaxCalculation{one, two},
	}
}

func TestCanSubmit(t *testing.T) {
	report := validatedReport()
	assert.True(t, CanSubmit(report))

	report.Calculations[1].IsValidated = false
	assert.False(t, CanSubmit(report))

	report = validatedReport()
	report.Status = constants.ReportSubmitted
	assert.False(t, CanSubmit(report))

	report = validatedReport()
	report.Calculations = nil
	assert.False(t, CanSubmit(report))
}

func TestSubmit(t *testing.T) {
	report := validatedReport()
	assert.NoError(t, Submit(&report))
	assert.Equal(t, constants.ReportSubmitted, report.Status)

	// One-way: a second submission is refused.
	assert.ErrorIs(t, Submit(&report), ErrReportNotDraft)

	report = validatedReport()
	report.Calculations[0].IsValidated = false
	assert.ErrorIs(t, Submit(&report), ErrUnvalidatedJurisdictions)

	report = validatedReport()
	report.Calculations = nil
	assert.ErrorIs(t, Submit(&report), ErrNoJurisdictions)
}

func TestSummarize(t *testing.T) {
	report := validatedReport()
	report.Calculations[1].IsValidated = false
	report.Calculations[1].NetTaxDue = decimal.NewFromFloat(-1.50)

	summary := Summarize(report)
	assert.Equal(t, 2000.0, summary.TotalMiles)
	assert.Equal(t, 300.0, summary.TotalGallons)
	assert.True(t, summary.TotalNetTaxDue.Equal(decimal.NewFromFloat(1.50)), "got %s", summary.TotalNetTaxDue)
	assert.Equal(t, 50, summary.ValidationProgress)
	assert.False(t, summary.CanSubmit)

	Validate(&report.Calculations[1])
	summary = Summarize(report)
	assert.Equal(t, 100, summary.ValidationProgress)
	assert.True(t, summary.CanSubmit)
}

func TestSummarizeEmptyReport(t *testing.T) {
	summary := Summarize(models.IFTAReport{Status: constants.ReportDraft})
	assert.Equal(t, 0, summary.ValidationProgress)
	assert.False(t, summary.CanSubmit)
	assert.True(t, summary.TotalNetTaxDue.IsZero())
}
