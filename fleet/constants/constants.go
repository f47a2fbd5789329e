package constants

import "time"

// Duty statuses for an HOS entry.
const (
	DutyStatusDriving      = "driving"
	DutyStatusOnDuty       = "on_duty"
	DutyStatusOffDuty      = "off_duty"
	DutyStatusSleeperBerth = "sleeper_berth"
)

// Federal driving and on-duty limits, in minutes. A day is compliant while
// the consumed time is at or below the limit; the violation check is
// strictly greater-than.
const (
	MaxDriveMinutes  = 11 * 60
	MaxOnDutyMinutes = 14 * 60
)

// HOS log compliance verdicts.
const (
	HOSCompliant = "compliant"
	HOSViolation = "violation"
)

// Per-entity compliance statuses.
const (
	StatusCompliant    = "Compliant"
	StatusWarning      = "Warning"
	StatusNonCompliant = "Non-Compliant"
)

// Vehicle administrative statuses.
const (
	VehicleActive      = "active"
	VehicleInactive    = "inactive"
	VehicleMaintenance = "maintenance"
)

// Document lifecycle statuses.
const (
	DocumentActive  = "active"
	DocumentExpired = "expired"
	DocumentRevoked = "revoked"
)

// Deadline item types.
const (
	DeadlineDriverCDL         = "Driver CDL"
	DeadlineDriverMedicalCard = "Driver Medical Card"
	DeadlineDocumentExpired   = "Document Expiration"
	DeadlineIFTAFiling        = "IFTA Filing"
)

// Deadline item statuses.
const (
	DeadlineUpcoming     = "Upcoming"
	DeadlineExpiringSoon = "Expiring Soon"
	DeadlineDueSoon      = "Due Soon"
	DeadlineExpired      = "Expired"
)

// Expiration windows, in days.
const (
	ExpirationWarningDays = 30
	UrgentDeadlineDays    = 15
)

// Inspection cycle for vehicles.
const InspectionCycleDays = 90

// IFTA report statuses. The draft to submitted transition is one-way.
const (
	ReportDraft     = "draft"
	ReportSubmitted = "submitted"
	ReportFiled     = "filed"
)

// IFTA validation bounds.
const (
	MinFuelEconomyMPG = 3.0
	MaxFuelEconomyMPG = 12.0
	MinTaxRate        = 0.05
	MaxTaxRate        = 0.60
)

// HoursInDay is used when converting date differences to whole days.
const HoursInDay = 24 * time.Hour

// This is set during compilation. See the build scripts in the ops repo.
var Version = "latest"
