// Package ifta computes quarterly fuel-tax liability per jurisdiction and
// gates report submission on validated calculations.
package ifta

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fleetscope/fleet-app/fleet/constants"
	customErrors "github.com/fleetscope/fleet-app/fleet/errors"
	"github.com/fleetscope/fleet-app/fleet/models"
)

var (
	ErrReportNotDraft           = errors.New("report is not in draft status")
	ErrUnvalidatedJurisdictions = errors.New("every jurisdiction must be validated before submission")
	ErrNoJurisdictions          = errors.New("report has no jurisdiction calculations")
)

// QuarterDueDate returns the fixed filing due date for a quarter: Q1 is due
// April 30, Q2 July 31, Q3 October 31, and Q4 January 31 of the following
// year. An invalid quarter yields the zero time.
func QuarterDueDate(year, quarter int) time.Time {
	switch quarter {
	case 1:
		return time.Date(year, time.April, 30, 0, 0, 0, 0, time.UTC)
	case 2:
		return time.Date(year, time.July, 31, 0, 0, 0, 0, time.UTC)
	case 3:
		return time.Date(year, time.October, 31, 0, 0, 0, 0, time.UTC)
	case 4:
		return time.Date(year+1, time.January, 31, 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}
	}
}

// RateTable maps a jurisdiction code to its per-gallon tax rate for one
// quarter.
type RateTable map[string]decimal.Decimal

// BuildCalculations derives one JurisdictionTaxCalculation per jurisdiction
// appearing in the quarter's trip and fuel records.
//
// Fuel consumed in a jurisdiction is attributed by fleet average economy:
// total fleet miles divided by total gallons purchased, applied to the
// jurisdiction's miles. Tax due is the jurisdiction rate applied to consumed
// gallons net of gallons already taxed at purchase, so a jurisdiction where
// more fuel was bought than burned carries a negative liability.
//
// Records with negative miles or gallons are rejected before any
// computation; jurisdictions missing from the rate table get a zero rate,
// which the validation pass then flags.
func BuildCalculations(reportID uuid.UUID, trips []models.TripRecord,
	fuel []models.FuelPurchase, rates RateTable) ([]models.JurisdictionTaxCalculation, error) {

	milesByJurisdiction := make(map[string]float64)
	gallonsByJurisdiction := make(map[string]float64)
	var totalMiles, totalGallons float64

	for _, t := range trips {
		if t.Miles < 0 {
			return nil, &customErrors.EntityValidationError{
				Err:        errors.New("trip has negative miles"),
				EntityType: "trip_record",
				EntityID:   t.ID.String(),
			}
		}
		milesByJurisdiction[t.Jurisdiction] += t.Miles
		totalMiles += t.Miles
	}

	for _, f := range fuel {
		if f.Gallons < 0 {
			return nil, &customErrors.EntityValidationError{
				Err:        errors.New("fuel purchase has negative gallons"),
				EntityType: "fuel_purchase",
				EntityID:   f.ID.String(),
			}
		}
		gallonsByJurisdiction[f.Jurisdiction] += f.Gallons
		totalGallons += f.Gallons
	}

	jurisdictions := make(map[string]struct{})
	for j := range milesByJurisdiction {
		jurisdictions[j] = struct{}{}
	}
	for j := range gallonsByJurisdiction {
		jurisdictions[j] = struct{}{}
	}

	// Fleet average economy; zero when no fuel was purchased, which leaves
	// consumption at zero and lets validation flag the implausible result.
	var fleetMPG float64
	if totalGallons > 0 {
		fleetMPG = totalMiles / totalGallons
	}

	var calculations []models.JurisdictionTaxCalculation
	for jurisdiction := range jurisdictions {
		miles := milesByJurisdiction[jurisdiction]
		purchased := gallonsByJurisdiction[jurisdiction]

		var consumed float64
		if fleetMPG > 0 {
			consumed = miles / fleetMPG
		}

		rate := rates[jurisdiction]

		calc := models.JurisdictionTaxCalculation{
			ID:            uuid.NewRandom(),
			ReportID:      reportID,
			Jurisdiction:  jurisdiction,
			TotalMiles:    miles,
			TaxableMiles:  miles,
			FuelPurchased: purchased,
			FuelConsumed:  consumed,
			TaxRate:       rate,
			TaxCredits:    decimal.Zero,
			Adjustments:   decimal.Zero,
		}
		calc.TaxDue = taxDue(calc)
		calc.NetTaxDue = netTaxDue(calc)
		calculations = append(calculations, calc)
	}

	sort.Slice(calculations, func(i, j int) bool {
		return calculations[i].Jurisdiction < calculations[j].Jurisdiction
	})

	return calculations, nil
}

// taxDue is the jurisdiction rate applied to consumed gallons net of
// purchased gallons, rounded to cents.
func taxDue(calc models.JurisdictionTaxCalculation) decimal.Decimal {
	netGallons := decimal.NewFromFloat(calc.FuelConsumed).Sub(decimal.NewFromFloat(calc.FuelPurchased))
	return calc.TaxRate.Mul(netGallons).Round(2)
}

func netTaxDue(calc models.JurisdictionTaxCalculation) decimal.Decimal {
	return calc.TaxDue.Add(calc.Adjustments).Sub(calc.TaxCredits).Round(2)
}

// ValidationResult is the structured outcome of a validation pass. A failed
// check is a warning for a human reviewer, not an error.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings"`
}

// ValidateCalculation runs every plausibility check and reports all
// failures; it never stops at the first one.
func ValidateCalculation(calc models.JurisdictionTaxCalculation) ValidationResult {
	var warnings []string

	mpg := 0.0
	if calc.FuelConsumed > 0 {
		mpg = calc.TotalMiles / calc.FuelConsumed
	}
	if calc.FuelConsumed <= 0 || mpg < constants.MinFuelEconomyMPG || mpg > constants.MaxFuelEconomyMPG {
		warnings = append(warnings, fmt.Sprintf(
			"%s: fuel economy %.1f MPG is outside the plausible range [%.0f, %.0f]",
			calc.Jurisdiction, mpg, constants.MinFuelEconomyMPG, constants.MaxFuelEconomyMPG))
	}

	if calc.FuelPurchased < 0 {
		warnings = append(warnings, fmt.Sprintf("%s: fuel purchased is negative", calc.Jurisdiction))
	}
	if calc.FuelConsumed < 0 {
		warnings = append(warnings, fmt.Sprintf("%s: fuel consumed is negative", calc.Jurisdiction))
	}

	rate, _ := calc.TaxRate.Float64()
	if rate < constants.MinTaxRate || rate > constants.MaxTaxRate {
		warnings = append(warnings, fmt.Sprintf(
			"%s: tax rate %.3f is outside the plausible range [%.2f, %.2f]",
			calc.Jurisdiction, rate, constants.MinTaxRate, constants.MaxTaxRate))
	}

	return ValidationResult{Valid: len(warnings) == 0, Warnings: warnings}
}

// Validate runs the plausibility checks and, only when every check passes,
// marks the calculation validated. A failed pass clears IsValidated; there
// is no partial validation.
func Validate(calc *models.JurisdictionTaxCalculation) ValidationResult {
	result := ValidateCalculation(*calc)
	calc.IsValidated = result.Valid
	return result
}

// ApplyAdjustment applies a manual adjustment and/or credit, recomputes the
// net tax immediately, and resets IsValidated. An edited calculation must
// pass validation again before its report can be submitted; this is a
// strict invariant of the filing flow.
func ApplyAdjustment(calc *models.JurisdictionTaxCalculation, adjustments, credits decimal.Decimal) {
	calc.Adjustments = adjustments
	calc.TaxCredits = credits
	calc.NetTaxDue = netTaxDue(*calc)
	calc.IsValidated = false
}

// CanSubmit reports whether the report is a draft whose jurisdiction
// calculations are all validated. A report with no jurisdictions cannot be
// submitted.
func CanSubmit(report models.IFTAReport) bool {
	if report.Status != constants.ReportDraft || len(report.Calculations) == 0 {
		return false
	}
	for _, calc := range report.Calculations {
		if !calc.IsValidated {
			return false
		}
	}
	return true
}

// Submit transitions a draft report to submitted. The transition is one-way
// and refused with a specific reason when the preconditions do not hold.
func Submit(report *models.IFTAReport) error {
	if report.Status != constants.ReportDraft {
		return ErrReportNotDraft
	}
	if len(report.Calculations) == 0 {
		return ErrNoJurisdictions
	}
	for _, calc := range report.Calculations {
		if !calc.IsValidated {
			return ErrUnvalidatedJurisdictions
		}
	}

	report.Status = constants.ReportSubmitted
	return nil
}

// Summarize computes the report-level rollup.
func Summarize(report models.IFTAReport) models.ReportSummary {
	var summary models.ReportSummary
	summary.TotalNetTaxDue = decimal.Zero

	var validated int
	for _, calc := range report.Calculations {
		summary.TotalMiles += calc.TotalMiles
		summary.TotalGallons += calc.FuelPurchased
		summary.TotalNetTaxDue = summary.TotalNetTaxDue.Add(calc.NetTaxDue)
		if calc.IsValidated {
			validated++
		}
	}

	if len(report.Calculations) > 0 {
		summary.ValidationProgress = int(math.Round(100 * float64(validated) / float64(len(report.Calculations))))
	}
	summary.CanSubmit = CanSubmit(report)

	return summary
}
