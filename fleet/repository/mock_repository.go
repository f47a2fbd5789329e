package repository

import (
	"context"
	"time"

	"github.com/pborman/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fleetscope/fleet-app/fleet/models"
)

// MockRepository is a mock implementation of Repository for use in tests.
type MockRepository struct {
	mock.Mock
}

var _ Repository = &MockRepository{}

func (m *MockRepository) GetDriversByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Driver, error) {
	args := m.Called(ctx, orgID)
	var drivers []models.Driver
	if args.Get(0) != nil {
		drivers = args.Get(0).([]models.Driver)
	}
	return drivers, args.Error(1)
}

func (m *MockRepository) GetVehiclesByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Vehicle, error) {
	args := m.Called(ctx, orgID)
	var vehicles []models.Vehicle
	if args.Get(0) != nil {
		vehicles = args.Get(0).([]models.Vehicle)
	}
	return vehicles, args.Error(1)
}

func (m *MockRepository) GetDocumentsByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Document, error) {
	args := m.Called(ctx, orgID)
	var documents []models.Document
	if args.Get(0) != nil {
		documents = args.Get(0).([]models.Document)
	}
	return documents, args.Error(1)
}

func (m *MockRepository) GetHOSLogs(ctx context.Context, driverID uuid.UUID, since time.Time) ([]models.HOSLog, error) {
	args := m.Called(ctx, driverID, since)
	var logs []models.HOSLog
	if args.Get(0) != nil {
		logs = args.Get(0).([]models.HOSLog)
	}
	return logs, args.Error(1)
}

func (m *MockRepository) GetTripRecords(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]models.TripRecord, error) {
	args := m.Called(ctx, orgID, start, end)
	var trips []models.TripRecord
	if args.Get(0) != nil {
		trips = args.Get(0).([]models.TripRecord)
	}
	return trips, args.Error(1)
}

func (m *MockRepository) GetFuelPurchases(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]models.FuelPurchase, error) {
	args := m.Called(ctx, orgID, start, end)
	var purchases []models.FuelPurchase
	if args.Get(0) != nil {
		purchases = args.Get(0).([]models.FuelPurchase)
	}
	return purchases, args.Error(1)
}

func (m *MockRepository) GetIFTAReport(ctx context.Context, reportID uuid.UUID) (*models.IFTAReport, error) {
	args := m.Called(ctx, reportID)
	var report *models.IFTAReport
	if args.Get(0) != nil {
		report = args.Get(0).(*models.IFTAReport)
	}
	return report, args.Error(1)
}

func (m *MockRepository) CreateIFTAReport(ctx context.Context, report models.IFTAReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockRepository) CreateJurisdictionCalculation(ctx context.Context, calc models.JurisdictionTaxCalculation) error {
	args := m.Called(ctx, calc)
	return args.Error(0)
}

func (m *MockRepository) UpdateJurisdictionCalculation(ctx context.Context, calc models.JurisdictionTaxCalculation) error {
	args := m.Called(ctx, calc)
	return args.Error(0)
}

func (m *MockRepository) UpdateReportStatusCheckStatus(ctx context.Context, reportID uuid.UUID, current, new string) error {
	args := m.Called(ctx, reportID, current, new)
	return args.Error(0)
}
