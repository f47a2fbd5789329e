// Package repository contains all of the methods needed to interact with the
// fleet compliance data.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/pborman/uuid"

	"github.com/fleetscope/fleet-app/fleet/models"
)

type Repository interface {
	driverRepository
	vehicleRepository
	documentRepository
	hosRepository
	iftaRepository
}

type driverRepository interface {
	GetDriversByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Driver, error)
}

type vehicleRepository interface {
	GetVehiclesByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Vehicle, error)
}

type documentRepository interface {
	GetDocumentsByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Document, error)
}

type hosRepository interface {
	// GetHOSLogs returns the driver's daily logs dated on or after since,
	// each with its duty-status entries attached in chronological order.
	GetHOSLogs(ctx context.Context, driverID uuid.UUID, since time.Time) ([]models.HOSLog, error)
}

type iftaRepository interface {
	GetTripRecords(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]models.TripRecord, error)

	GetFuelPurchases(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]models.FuelPurchase, error)

	// GetIFTAReport returns the report with its jurisdiction calculations
	// attached, sorted by jurisdiction.
	GetIFTAReport(ctx context.Context, reportID uuid.UUID) (*models.IFTAReport, error)

	CreateIFTAReport(ctx context.Context, report models.IFTAReport) error

	CreateJurisdictionCalculation(ctx context.Context, calc models.JurisdictionTaxCalculation) error

	UpdateJurisdictionCalculation(ctx context.Context, calc models.JurisdictionTaxCalculation) error

	// UpdateReportStatusCheckStatus updates the particular report indicated
	// by reportID iff the report's status field matches current.
	UpdateReportStatusCheckStatus(ctx context.Context, reportID uuid.UUID, current, new string) error
}

var (
	ErrReportNotFound        = errors.New("no report found for given id")
	ErrReportNotUpdated      = errors.New("report was not updated, no match found")
	ErrCalculationNotUpdated = errors.New("calculation was not updated, no match found")
)
