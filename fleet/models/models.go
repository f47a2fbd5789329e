package models

import (
	"time"

	"github.com/pborman/uuid"
	"github.com/shopspring/decimal"
)

// Driver is a commercial driver belonging to one organization. Expiration
// dates are optional; a missing date is treated as "never recorded", not as
// expired.
type Driver struct {
	ID                    uuid.UUID  `json:"id"`
	OrganizationID        uuid.UUID  `json:"organization_id"`
	Name                  string     `json:"name"`
	LicenseExpiration     *time.Time `json:"license_expiration,omitempty"`
	MedicalCardExpiration *time.Time `json:"medical_card_expiration,omitempty"`
}

// Vehicle is a power unit. LastInspectionPassed is only meaningful when
// LastInspectionDate is set.
type Vehicle struct {
	ID                   uuid.UUID  `json:"id"`
	OrganizationID       uuid.UUID  `json:"organization_id"`
	UnitNumber           string     `json:"unit_number"`
	Status               string     `json:"status"`
	LastInspectionDate   *time.Time `json:"last_inspection_date,omitempty"`
	LastInspectionPassed *bool      `json:"last_inspection_passed,omitempty"`
	OpenDefects          int        `json:"open_defects"`
}

// Assignment targets for a document. The document/driver/vehicle relations
// are resolved once at read time into this flat enumeration rather than
// navigated as an object graph.
const (
	AssignedToDriver  = "Driver"
	AssignedToVehicle = "Vehicle"
	AssignedToCompany = "Company"
)

// Document is a compliance document (permit, insurance certificate, etc.)
// optionally tied to a driver or vehicle.
type Document struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	AssignedTo     string     `json:"assigned_to"`
	DriverID       *uuid.UUID `json:"driver_id,omitempty"`
	VehicleID      *uuid.UUID `json:"vehicle_id,omitempty"`
}

// HOSEntry is one continuous duty-status interval. Entries are immutable
// once certified; an edit creates a replacement entry and flags the day.
type HOSEntry struct {
	ID        uuid.UUID `json:"id"`
	DriverID  uuid.UUID `json:"driver_id"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Location  string    `json:"location"`
	Source    string    `json:"source"`
}

// Duration returns the entry length in whole minutes.
func (e HOSEntry) Duration() int {
	return int(e.EndTime.Sub(e.StartTime) / time.Minute)
}

// HOSLog is one driver's duty log for one calendar day. Insertion order of
// entries is chronological. Edited marks a day whose certified entries were
// later replaced.
type HOSLog struct {
	ID               uuid.UUID  `json:"id"`
	DriverID         uuid.UUID  `json:"driver_id"`
	Date             time.Time  `json:"date"`
	Entries          []HOSEntry `json:"entries"`
	Edited           bool       `json:"edited"`
	TotalDriveTime   int        `json:"total_drive_time"`
	TotalOnDutyTime  int        `json:"total_on_duty_time"`
	TotalOffDutyTime int        `json:"total_off_duty_time"`
	ComplianceStatus string     `json:"compliance_status"`
}

// TripRecord is one jurisdiction-attributed distance record.
type TripRecord struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	VehicleID      *uuid.UUID `json:"vehicle_id,omitempty"`
	Jurisdiction   string     `json:"jurisdiction"`
	Miles          float64    `json:"miles"`
	Date           time.Time  `json:"date"`
}

// FuelPurchase is one fuel receipt attributed to a jurisdiction.
type FuelPurchase struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	Jurisdiction   string          `json:"jurisdiction"`
	Gallons        float64         `json:"gallons"`
	Amount         decimal.Decimal `json:"amount"`
	Date           time.Time       `json:"date"`
}

// JurisdictionTaxCalculation is the liability computation for one
// (report, jurisdiction) pair. IsValidated may only be set after the
// calculation passes validation, and any subsequent edit clears it.
type JurisdictionTaxCalculation struct {
	ID            uuid.UUID       `json:"id"`
	ReportID      uuid.UUID       `json:"report_id"`
	Jurisdiction  string          `json:"jurisdiction"`
	TotalMiles    float64         `json:"total_miles"`
	TaxableMiles  float64         `json:"taxable_miles"`
	FuelPurchased float64         `json:"fuel_purchased"`
	FuelConsumed  float64         `json:"fuel_consumed"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxDue        decimal.Decimal `json:"tax_due"`
	TaxCredits    decimal.Decimal `json:"tax_credits"`
	Adjustments   decimal.Decimal `json:"adjustments"`
	NetTaxDue     decimal.Decimal `json:"net_tax_due"`
	IsValidated   bool            `json:"is_validated"`
}

// IFTAReport aggregates the jurisdiction calculations for one
// (organization, year, quarter).
type IFTAReport struct {
	ID             uuid.UUID                    `json:"id"`
	OrganizationID uuid.UUID                    `json:"organization_id"`
	Year           int                          `json:"year"`
	Quarter        int                          `json:"quarter"`
	Status         string                       `json:"status"`
	Calculations   []JurisdictionTaxCalculation `json:"calculations"`
}
