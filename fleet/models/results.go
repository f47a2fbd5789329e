package models

import (
	"time"

	"github.com/pborman/uuid"
	"github.com/shopspring/decimal"
)

// Derived result shapes. None of these are persisted; they are recomputed on
// every engine invocation from the record snapshot and an explicit now.

// HOSStatusResult is the actionable summary of a driver's recent duty logs.
// All times are minutes.
type HOSStatusResult struct {
	CurrentStatus       string `json:"current_status"`
	UsedDriveTime       int    `json:"used_drive_time"`
	AvailableDriveTime  int    `json:"available_drive_time"`
	UsedOnDutyTime      int    `json:"used_on_duty_time"`
	AvailableOnDutyTime int    `json:"available_on_duty_time"`
	ComplianceStatus    string `json:"compliance_status"`
}

// CategoryMetric is the per-category compliance rollup. Rate is a rounded
// percentage and is zero when the category is empty.
type CategoryMetric struct {
	Rate          int `json:"rate"`
	Total         int `json:"total"`
	Compliant     int `json:"compliant"`
	NeedAttention int `json:"need_attention"`
}

// ComplianceMetrics is the dashboard summary for one organization. HOS
// violations are an operational alert counted separately from the per-driver
// expiration gate.
type ComplianceMetrics struct {
	DriverCompliance   CategoryMetric `json:"driver_compliance"`
	VehicleCompliance  CategoryMetric `json:"vehicle_compliance"`
	DocumentCompliance CategoryMetric `json:"document_compliance"`
	HOSViolations      int            `json:"hos_violations"`
}

// DeadlineItem is one upcoming or missed obligation. DueIn is whole days and
// zero for items already past.
type DeadlineItem struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	DueIn  int    `json:"due_in"`
	Status string `json:"status"`
}

// DriverComplianceRecord is the derived per-driver verdict.
type DriverComplianceRecord struct {
	DriverID              uuid.UUID  `json:"driver_id"`
	Name                  string     `json:"name"`
	LicenseExpiration     *time.Time `json:"license_expiration,omitempty"`
	MedicalCardExpiration *time.Time `json:"medical_card_expiration,omitempty"`
	Status                string     `json:"status"`
}

// VehicleComplianceRecord is the derived per-vehicle verdict.
type VehicleComplianceRecord struct {
	VehicleID            uuid.UUID  `json:"vehicle_id"`
	UnitNumber           string     `json:"unit_number"`
	ComplianceStatus     string     `json:"compliance_status"`
	LastInspectionDate   *time.Time `json:"last_inspection_date,omitempty"`
	LastInspectionPassed *bool      `json:"last_inspection_passed,omitempty"`
	NextInspectionDate   time.Time  `json:"next_inspection_date"`
	OpenDefects          int        `json:"open_defects"`
}

// ReportSummary is the report-level IFTA rollup.
type ReportSummary struct {
	TotalMiles         float64         `json:"total_miles"`
	TotalGallons       float64         `json:"total_gallons"`
	TotalNetTaxDue     decimal.Decimal `json:"total_net_tax_due"`
	ValidationProgress int             `json:"validation_progress"`
	CanSubmit          bool            `json:"can_submit"`
}
