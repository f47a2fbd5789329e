package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/pborman/uuid"

	"github.com/fleetscope/fleet-app/fleet/models"
	"github.com/fleetscope/fleet-app/fleet/repository"
)

type queryable interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type executable interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const (
	sqlFlavor = sqlbuilder.PostgreSQL
)

// Ensure Repository satisfies the interface
var _ repository.Repository = &Repository{}

type Repository struct {
	queryable
	executable
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db, db}
}

func NewRepositoryTx(tx *sql.Tx) *Repository {
	return &Repository{tx, tx}
}

func (r *Repository) GetDriversByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Driver, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("id", "organization_id", "name", "license_expiration", "medical_card_expiration")
	sb.From("drivers").Where(sb.Equal("organization_id", orgID)).OrderBy("name")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []models.Driver
	for rows.Next() {
		var (
			d                models.Driver
			license, medical sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.OrganizationID, &d.Name, &license, &medical); err != nil {
			return nil, err
		}
		d.LicenseExpiration = nullableTime(license)
		d.MedicalCardExpiration = nullableTime(medical)
		drivers = append(drivers, d)
	}

	return drivers, rows.Err()
}

func (r *Repository) GetVehiclesByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Vehicle, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("id", "organization_id", "unit_number", "status",
		"last_inspection_date", "last_inspection_passed", "open_defects")
	sb.From("vehicles").Where(sb.Equal("organization_id", orgID)).OrderBy("unit_number")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		var (
			v         models.Vehicle
			inspected sql.NullTime
			passed    sql.NullBool
		)
		if err := rows.Scan(&v.ID, &v.OrganizationID, &v.UnitNumber, &v.Status,
			&inspected, &passed, &v.OpenDefects); err != nil {
			return nil, err
		}
		v.LastInspectionDate = nullableTime(inspected)
		if passed.Valid {
			v.LastInspectionPassed = &passed.Bool
		}
		vehicles = append(vehicles, v)
	}

	return vehicles, rows.Err()
}

func (r *Repository) GetDocumentsByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Document, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("id", "organization_id", "name", "type", "status",
		"expiration_date", "assigned_to", "driver_id", "vehicle_id")
	sb.From("documents").Where(sb.Equal("organization_id", orgID)).OrderBy("name")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []models.Document
	for rows.Next() {
		var (
			d                   models.Document
			expiration          sql.NullTime
			driverID, vehicleID sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.OrganizationID, &d.Name, &d.Type, &d.Status,
			&expiration, &d.AssignedTo, &driverID, &vehicleID); err != nil {
			return nil, err
		}
		d.ExpirationDate = nullableTime(expiration)
		d.DriverID = nullableUUID(driverID)
		d.VehicleID = nullableUUID(vehicleID)
		documents = append(documents, d)
	}

	return documents, rows.Err()
}

func (r *Repository) GetHOSLogs(ctx context.Context, driverID uuid.UUID, since time.Time) ([]models.HOSLog, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("id", "driver_id", "date", "edited", "total_drive_time",
		"total_on_duty_time", "total_off_duty_time", "compliance_status")
	sb.From("hos_logs")
	sb.Where(sb.Equal("driver_id", driverID), sb.GreaterEqualThan("date", since))
	sb.OrderBy("date")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.HOSLog
	for rows.Next() {
		var l models.HOSLog
		if err := rows.Scan(&l.ID, &l.DriverID, &l.Date, &l.Edited, &l.TotalDriveTime,
			&l.TotalOnDutyTime, &l.TotalOffDutyTime, &l.ComplianceStatus); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range logs {
		entries, err := r.getHOSEntries(ctx, logs[i].ID)
		if err != nil {
			return nil, err
		}
		logs[i].Entries = entries
	}

	return logs, nil
}

func (r *Repository) getHOSEntries(ctx context.Context, logID uuid.UUID) ([]models.HOSEntry, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("id", "driver_id", "status", "start_time", "end_time", "location", "source")
	sb.From("hos_entries").Where(sb.Equal("log_id", logID)).OrderBy("start_time")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HOSEntry
	for rows.Next() {
		var e models.HOSEntry
		if err := rows.Scan(&e.ID, &e.DriverID, &e.Status, &e.StartTime, &e.EndTime,
			&e.Location, &e.Source); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *Repository) GetTripRecords(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]models.TripRecord, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("id", "organization_id", "vehicle_id", "jurisdiction", "miles", "date")
	sb.From("trip_records")
	sb.Where(sb.Equal("organization_id", orgID),
		sb.GreaterEqualThan("date", start), sb.LessThan("date", end))
	sb.OrderBy("date")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []models.TripRecord
	for rows.Next() {
		var (
			t         models.TripRecord
			vehicleID sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.OrganizationID, &vehicleID, &t.Jurisdiction,
			&t.Miles, &t.Date); err != nil {
			return nil, err
		}
		t.VehicleID = nullableUUID(vehicleID)
		trips = append(trips, t)
	}

	return trips, rows.Err()
}

func (r *Repository) GetFuelPurchases(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]models.FuelPurchase, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("id", "organization_id", "jurisdiction", "gallons", "amount", "date")
	sb.From("fuel_purchases")
	sb.Where(sb.Equal("organization_id", orgID),
		sb.GreaterEqualThan("date", start), sb.LessThan("date", end))
	sb.OrderBy("date")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []models.FuelPurchase
	for rows.Next() {
		var p models.FuelPurchase
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.Jurisdiction, &p.Gallons,
			&p.Amount, &p.Date); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}

	return purchases, rows.Err()
}

func (r *Repository) GetIFTAReport(ctx context.Context, reportID uuid.UUID) (*models.IFTAReport, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("id", "organization_id", "year", "quarter", "status")
	sb.From("ifta_reports").Where(sb.Equal("id", reportID))

	query, args := sb.Build()
	var report models.IFTAReport
	err := r.QueryRowContext(ctx, query, args...).Scan(&report.ID, &report.OrganizationID,
		&report.Year, &report.Quarter, &report.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrReportNotFound
		}
		return nil, err
	}

	calculations, err := r.getCalculations(ctx, reportID)
	if err != nil {
		return nil, err
	}
	report.Calculations = calculations

	return &report, nil
}

func (r *Repository) getCalculations(ctx context.Context, reportID uuid.UUID) ([]models.JurisdictionTaxCalculation, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("id", "report_id", "jurisdiction", "total_miles", "taxable_miles",
		"fuel_purchased", "fuel_consumed", "tax_rate", "tax_due", "tax_credits",
		"adjustments", "net_tax_due", "is_validated")
	sb.From("jurisdiction_tax_calculations")
	sb.Where(sb.Equal("report_id", reportID)).OrderBy("jurisdiction")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calcs []models.JurisdictionTaxCalculation
	for rows.Next() {
		var c models.JurisdictionTaxCalculation
		if err := rows.Scan(&c.ID, &c.ReportID, &c.Jurisdiction, &c.TotalMiles,
			&c.TaxableMiles, &c.FuelPurchased, &c.FuelConsumed, &c.TaxRate, &c.TaxDue,
			&c.TaxCredits, &c.Adjustments, &c.NetTaxDue, &c.IsValidated); err != nil {
			return nil, err
		}
		calcs = append(calcs, c)
	}

	return calcs, rows.Err()
}

func (r *Repository) CreateIFTAReport(ctx context.Context, report models.IFTAReport) error {
	ib := sqlFlavor.NewInsertBuilder().InsertInto("ifta_reports")
	ib.Cols("id", "organization_id", "year", "quarter", "status").
		Values(report.ID, report.OrganizationID, report.Year, report.Quarter, report.Status)

	query, args := ib.Build()
	_, err := r.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) CreateJurisdictionCalculation(ctx context.Context, calc models.JurisdictionTaxCalculation) error {
	ib := sqlFlavor.NewInsertBuilder().InsertInto("jurisdiction_tax_calculations")
	ib.Cols("id", "report_id", "jurisdiction", "total_miles", "taxable_miles",
		"fuel_purchased", "fuel_consumed", "tax_rate", "tax_due", "tax_credits",
		"adjustments", "net_tax_due", "is_validated").
		Values(calc.ID, calc.ReportID, calc.Jurisdiction, calc.TotalMiles, calc.TaxableMiles,
			calc.FuelPurchased, calc.FuelConsumed, calc.TaxRate, calc.TaxDue, calc.TaxCredits,
			calc.Adjustments, calc.NetTaxDue, calc.IsValidated)

	query, args := ib.Build()
	_, err := r.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) UpdateJurisdictionCalculation(ctx context.Context, calc models.JurisdictionTaxCalculation) error {
	ub := sqlFlavor.NewUpdateBuilder().Update("jurisdiction_tax_calculations")
	ub.Set(
		ub.Assign("tax_credits", calc.TaxCredits),
		ub.Assign("adjustments", calc.Adjustments),
		ub.Assign("net_tax_due", calc.NetTaxDue),
		ub.Assign("is_validated", calc.IsValidated),
	)
	ub.Where(ub.Equal("id", calc.ID))

	query, args := ub.Build()
	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrCalculationNotUpdated
	}

	return nil
}

func (r *Repository) UpdateReportStatusCheckStatus(ctx context.Context, reportID uuid.UUID, current, new string) error {
	ub := sqlFlavor.NewUpdateBuilder().Update("ifta_reports")
	ub.Set(ub.Assign("status", new))
	ub.Where(ub.Equal("id", reportID), ub.Equal("status", current))

	query, args := ub.Build()
	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrReportNotUpdated
	}

	return nil
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func nullableUUID(s sql.NullString) *uuid.UUID {
	if !s.Valid {
		return nil
	}
	id := uuid.Parse(s.String)
	if id == nil {
		return nil
	}
	return &id
}
