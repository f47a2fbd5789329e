// Package compliance produces the dashboard summary and the ranked deadline
// list for one organization. Every computation takes an explicit now and is
// deterministic for a given record snapshot.
package compliance

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/fleetscope/fleet-app/fleet/constants"
	customErrors "github.com/fleetscope/fleet-app/fleet/errors"
	"github.com/fleetscope/fleet-app/fleet/hos"
	"github.com/fleetscope/fleet-app/fleet/models"
	"github.com/fleetscope/fleet-app/fleet/timeutil"
)

// Snapshot is the fully-materialized, tenant-scoped record set one
// aggregation call operates on. HOSLogs is keyed by driver ID.
type Snapshot struct {
	Drivers   []models.Driver
	Vehicles  []models.Vehicle
	Documents []models.Document
	HOSLogs   map[string][]models.HOSLog
}

// DriverStatus applies the expiration gate, first match wins: an already
// past license or medical card is Non-Compliant, one expiring within 30
// days is Warning, everything else is Compliant. HOS violations are
// deliberately not folded in here; they are an operational alert counted
// separately by SummaryMetrics.
func DriverStatus(d models.Driver, now time.Time) string {
	for _, expiration := range []*time.Time{d.LicenseExpiration, d.MedicalCardExpiration} {
		if expiration != nil && timeutil.IsPast(*expiration, now) {
			return constants.StatusNonCompliant
		}
	}
	for _, expiration := range []*time.Time{d.LicenseExpiration, d.MedicalCardExpiration} {
		if expiration != nil && timeutil.IsWithinNextDays(*expiration, constants.ExpirationWarningDays, now) {
			return constants.StatusWarning
		}
	}
	return constants.StatusCompliant
}

// DriverRecord computes the derived compliance record for one driver.
func DriverRecord(d models.Driver, now time.Time) (models.DriverComplianceRecord, error) {
	if len(d.ID) == 0 {
		return models.DriverComplianceRecord{}, &customErrors.EntityValidationError{
			Err:        errors.New("driver record is missing an id"),
			EntityType: "driver",
			EntityID:   d.Name,
		}
	}

	return models.DriverComplianceRecord{
		DriverID:              d.ID,
		Name:                  d.Name,
		LicenseExpiration:     d.LicenseExpiration,
		MedicalCardExpiration: d.MedicalCardExpiration,
		Status:                DriverStatus(d, now),
	}, nil
}

// VehicleStatus applies the inspection gate: administratively inactive or a
// failed latest inspection is Non-Compliant; a missing or stale (older than
// 90 days) inspection is Warning.
func VehicleStatus(v models.Vehicle, now time.Time) string {
	if v.Status == constants.VehicleInactive {
		return constants.StatusNonCompliant
	}
	if v.LastInspectionPassed != nil && !*v.LastInspectionPassed {
		return constants.StatusNonCompliant
	}
	if v.LastInspectionDate == nil ||
		timeutil.IsPast(v.LastInspectionDate.Add(constants.InspectionCycleDays*constants.HoursInDay), now) {
		return constants.StatusWarning
	}
	return constants.StatusCompliant
}

// VehicleRecord computes the derived compliance record for one vehicle,
// including the next inspection date (last inspection + 90 days, or now +
// 90 days if never inspected).
func VehicleRecord(v models.Vehicle, now time.Time) (models.VehicleComplianceRecord, error) {
	if len(v.ID) == 0 {
		return models.VehicleComplianceRecord{}, &customErrors.EntityValidationError{
			Err:        errors.New("vehicle record is missing an id"),
			EntityType: "vehicle",
			EntityID:   v.UnitNumber,
		}
	}
	switch v.Status {
	case constants.VehicleActive, constants.VehicleInactive, constants.VehicleMaintenance:
	default:
		return models.VehicleComplianceRecord{}, &customErrors.EntityValidationError{
			Err:        errors.Errorf("unknown vehicle status %q", v.Status),
			EntityType: "vehicle",
			EntityID:   v.ID.String(),
		}
	}

	next := now.Add(constants.InspectionCycleDays * constants.HoursInDay)
	if v.LastInspectionDate != nil {
		next = v.LastInspectionDate.Add(constants.InspectionCycleDays * constants.HoursInDay)
	}

	return models.VehicleComplianceRecord{
		VehicleID:            v.ID,
		UnitNumber:           v.UnitNumber,
		ComplianceStatus:     VehicleStatus(v, now),
		LastInspectionDate:   v.LastInspectionDate,
		LastInspectionPassed: v.LastInspectionPassed,
		NextInspectionDate:   next,
		OpenDefects:          v.OpenDefects,
	}, nil
}

// DocumentStatus mirrors the driver gate for documents: revoked, expired, or
// past-expiration documents are Non-Compliant; one expiring within 30 days
// is Warning.
func DocumentStatus(d models.Document, now time.Time) string {
	if d.Status != constants.DocumentActive {
		return constants.StatusNonCompliant
	}
	if d.ExpirationDate != nil {
		if timeutil.IsPast(*d.ExpirationDate, now) {
			return constants.StatusNonCompliant
		}
		if timeutil.IsWithinNextDays(*d.ExpirationDate, constants.ExpirationWarningDays, now) {
			return constants.StatusWarning
		}
	}
	return constants.StatusCompliant
}

// SummaryMetrics computes the per-category rates, need-attention counts,
// and the trailing HOS violation count for one snapshot.
//
// Per-entity computations are independent: a malformed record is skipped
// and reported in the returned error slice without blocking the rest of the
// aggregation. The caller is expected to surface the skipped entities.
func SummaryMetrics(snap Snapshot, evaluator hos.RuleEvaluator, now time.Time) (models.ComplianceMetrics, []error) {
	var metrics models.ComplianceMetrics
	var skipped []error

	var driverCompliant, driverTotal int
	for _, d := range snap.Drivers {
		record, err := DriverRecord(d, now)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		driverTotal++
		if record.Status == constants.StatusCompliant {
			driverCompliant++
		}
		if evaluator != nil && evaluator.HasViolation(snap.HOSLogs[d.ID.String()], now) {
			metrics.HOSViolations++
		}
	}
	metrics.DriverCompliance = categoryMetric(driverTotal, driverCompliant)

	var vehicleCompliant, vehicleTotal int
	for _, v := range snap.Vehicles {
		record, err := VehicleRecord(v, now)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		vehicleTotal++
		if record.ComplianceStatus == constants.StatusCompliant {
			vehicleCompliant++
		}
	}
	metrics.VehicleCompliance = categoryMetric(vehicleTotal, vehicleCompliant)

	var documentCompliant, documentTotal int
	for _, d := range snap.Documents {
		if len(d.ID) == 0 {
			skipped = append(skipped, &customErrors.EntityValidationError{
				Err:        errors.New("document record is missing an id"),
				EntityType: "document",
				EntityID:   d.Name,
			})
			continue
		}
		documentTotal++
		if DocumentStatus(d, now) == constants.StatusCompliant {
			documentCompliant++
		}
	}
	metrics.DocumentCompliance = categoryMetric(documentTotal, documentCompliant)

	return metrics, skipped
}

func categoryMetric(total, compliant int) models.CategoryMetric {
	m := models.CategoryMetric{
		Total:         total,
		Compliant:     compliant,
		NeedAttention: total - compliant,
	}
	if total > 0 {
		m.Rate = int(math.Round(100 * float64(compliant) / float64(total)))
	}
	return m
}
