package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pborman/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fleetscope/fleet-app/fleet/constants"
	"github.com/fleetscope/fleet-app/fleet/ifta"
	"github.com/fleetscope/fleet-app/fleet/models"
	"github.com/fleetscope/fleet-app/fleet/repository"
	"github.com/fleetscope/fleet-app/fleet/testutils"
	"github.com/fleetscope/fleet-app/fleet/timeutil"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

type ServiceTestSuite struct {
	suite.Suite

	repo *repository.MockRepository
	svc  Service
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	s.repo = &repository.MockRepository{}
	s.svc = NewService(s.repo, &Config{HOSLookbackDays: 30, EditedLogLookbackDays: 7})
}

func (s *ServiceTestSuite) TearDownTest() {
	s.repo.AssertExpectations(s.T())
}

func (s *ServiceTestSuite) TestGetComplianceSummary() {
	orgID := uuid.NewRandom()

	expired := fixedNow.Add(-24 * time.Hour)
	nonCompliant := models.Driver{ID: uuid.NewRandom(), OrganizationID: orgID, Name: "Lapsed", LicenseExpiration: &expired}
	drivers := []models.Driver{
		testutils.RandomDriver(orgID, fixedNow),
		testutils.RandomDriver(orgID, fixedNow),
		nonCompliant,
	}

	s.repo.On("GetDriversByOrg", testutils.CtxMatcher, orgID).Return(drivers, nil)
	s.repo.On("GetVehiclesByOrg", testutils.CtxMatcher, orgID).Return([]models.Vehicle{testutils.RandomVehicle(orgID, fixedNow)}, nil)
	s.repo.On("GetDocumentsByOrg", testutils.CtxMatcher, orgID).Return([]models.Document{testutils.RandomDocument(orgID)}, nil)
	for _, d := range drivers {
		s.repo.On("GetHOSLogs", testutils.CtxMatcher, d.ID, mock.AnythingOfType("time.Time")).Return(nil, nil)
	}

	metrics, err := s.svc.GetComplianceSummary(context.Background(), orgID, fixedNow)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.CategoryMetric{Rate: 67, Total: 3, Compliant: 2, NeedAttention: 1}, metrics.DriverCompliance)
	assert.Equal(s.T(), 100, metrics.VehicleCompliance.Rate)
	assert.Equal(s.T(), 0, metrics.HOSViolations)
}

func (s *ServiceTestSuite) TestGetComplianceSummaryRepositoryError() {
	orgID := uuid.NewRandom()
	s.repo.On("GetDriversByOrg", testutils.CtxMatcher, orgID).Return(nil, fmt.Errorf("some db error"))

	_, err := s.svc.GetComplianceSummary(context.Background(), orgID, fixedNow)
	assert.Contains(s.T(), err.Error(), "failed to load drivers")
}

func (s *ServiceTestSuite) TestGetUpcomingDeadlines() {
	orgID := uuid.NewRandom()

	expiring := fixedNow.Add(10 * 24 * time.Hour)
	driver := models.Driver{ID: uuid.NewRandom(), OrganizationID: orgID, Name: "Ray Paulsen", LicenseExpiration: &expiring}

	s.repo.On("GetDriversByOrg", testutils.CtxMatcher, orgID).Return([]models.Driver{driver}, nil)
	s.repo.On("GetVehiclesByOrg", testutils.CtxMatcher, orgID).Return(nil, nil)
	s.repo.On("GetDocumentsByOrg", testutils.CtxMatcher, orgID).Return(nil, nil)
	s.repo.On("GetHOSLogs", testutils.CtxMatcher, driver.ID, mock.AnythingOfType("time.Time")).Return(nil, nil)

	items, err := s.svc.GetUpcomingDeadlines(context.Background(), orgID, fixedNow)
	assert.NoError(s.T(), err)
	assert.Len(s.T(), items, 1)
	assert.Equal(s.T(), constants.DeadlineDriverCDL, items[0].Type)
	assert.Equal(s.T(), 10, items[0].DueIn)
}

func (s *ServiceTestSuite) TestGetDriverHOSStatus() {
	driverID := uuid.NewRandom()
	start := fixedNow.Add(-8 * time.Hour)
	logs := []models.HOSLog{{
		ID:       uuid.NewRandom(),
		DriverID: driverID,
		Date:     fixedNow.Truncate(24 * time.Hour),
		Entries: []models.HOSEntry{{
			ID:        uuid.NewRandom(),
			DriverID:  driverID,
			Status:    constants.DutyStatusDriving,
			StartTime: start,
			EndTime:   start.Add(6 * time.Hour),
		}},
	}}

	expectedSince := timeutil.TruncateToDay(fixedNow)
	s.repo.On("GetHOSLogs", testutils.CtxMatcher, driverID, expectedSince).Return(logs, nil)

	result, err := s.svc.GetDriverHOSStatus(context.Background(), driverID, fixedNow)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), constants.DutyStatusDriving, result.CurrentStatus)
	assert.Equal(s.T(), 360, result.UsedDriveTime)
	assert.Equal(s.T(), 300, result.AvailableDriveTime)
	assert.Equal(s.T(), constants.HOSCompliant, result.ComplianceStatus)
}

// Daily limits are evaluated against the current day's log only. A driver
// with a compliant six-hour day stays compliant no matter how many prior
// days are on record, because prior days are never fetched.
func (s *ServiceTestSuite) TestGetDriverHOSStatusCurrentDayOnly() {
	driverID := uuid.NewRandom()
	dayStart := timeutil.TruncateToDay(fixedNow)

	today := models.HOSLog{
		ID:       uuid.NewRandom(),
		DriverID: driverID,
		Date:     dayStart,
		Entries: []models.HOSEntry{{
			ID:        uuid.NewRandom(),
			DriverID:  driverID,
			Status:    constants.DutyStatusDriving,
			StartTime: dayStart.Add(6 * time.Hour),
			EndTime:   dayStart.Add(12 * time.Hour),
		}},
	}

	// Keyed on the midnight cutoff; a wider lookback would not match.
	s.repo.On("GetHOSLogs", testutils.CtxMatcher, driverID, dayStart).
		Return([]models.HOSLog{today}, nil)

	result, err := s.svc.GetDriverHOSStatus(context.Background(), driverID, fixedNow)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 360, result.UsedDriveTime)
	assert.Equal(s.T(), constants.HOSCompliant, result.ComplianceStatus)
}

func (s *ServiceTestSuite) TestGenerateIFTAReport() {
	orgID := uuid.NewRandom()
	rates := ifta.RateTable{"IA": decimal.RequireFromString("0.30"), "NE": decimal.RequireFromString("0.25")}

	qStart := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	qEnd := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	trips := []models.TripRecord{
		{ID: uuid.NewRandom(), OrganizationID: orgID, Jurisdiction: "IA", Miles: 1000, Date: qStart},
		{ID: uuid.NewRandom(), OrganizationID: orgID, Jurisdiction: "NE", Miles: 500, Date: qStart},
	}
	fuel := []models.FuelPurchase{
		{ID: uuid.NewRandom(), OrganizationID: orgID, Jurisdiction: "IA", Gallons: 250, Date: qStart},
		{ID: uuid.NewRandom(), OrganizationID: orgID, Jurisdiction: "NE", Gallons: 50, Date: qStart},
	}

	s.repo.On("GetTripRecords", testutils.CtxMatcher, orgID, qStart, qEnd).Return(trips, nil)
	s.repo.On("GetFuelPurchases", testutils.CtxMatcher, orgID, qStart, qEnd).Return(fuel, nil)
	s.repo.On("CreateIFTAReport", testutils.CtxMatcher, mock.AnythingOfType("models.IFTAReport")).Return(nil)
	s.repo.On("CreateJurisdictionCalculation", testutils.CtxMatcher, mock.AnythingOfType("models.JurisdictionTaxCalculation")).Return(nil).Times(2)

	report, err := s.svc.GenerateIFTAReport(context.Background(), orgID, 2024, 2, rates)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), constants.ReportDraft, report.Status)
	assert.Len(s.T(), report.Calculations, 2)
	assert.Equal(s.T(), "IA", report.Calculations[0].Jurisdiction)
	assert.Equal(s.T(), "NE", report.Calculations[1].Jurisdiction)
}

func (s *ServiceTestSuite) TestGenerateIFTAReportInvalidQuarter() {
	_, err := s.svc.GenerateIFTAReport(context.Background(), uuid.NewRandom(), 2024, 5, nil)
	assert.EqualError(s.T(), err, "invalid quarter 5")
}

func (s *ServiceTestSuite) TestValidateJurisdiction() {
	reportID := uuid.NewRandom()
	report := &models.IFTAReport{
		ID:      reportID,
		Year:    2024,
		Quarter: 2,
		Status:  constants.ReportDraft,
		Calculations: []models.JurisdictionTaxCalculation{{
			ID:            uuid.NewRandom(),
			ReportID:      reportID,
			Jurisdiction:  "IA",
			TotalMiles:    1000,
			FuelPurchased: 150,
			FuelConsumed:  160,
			TaxRate:       decimal.RequireFromString("0.30"),
		}},
	}

	s.repo.On("GetIFTAReport", testutils.CtxMatcher, reportID).Return(report, nil)
	s.repo.On("UpdateJurisdictionCalculation", testutils.CtxMatcher,
		mock.MatchedBy(func(c models.JurisdictionTaxCalculation) bool { return c.IsValidated })).Return(nil)

	result, err := s.svc.ValidateJurisdiction(context.Background(), reportID, "IA")
	assert.NoError(s.T(), err)
	assert.True(s.T(), result.Valid)
	assert.Empty(s.T(), result.Warnings)
}

func (s *ServiceTestSuite) TestValidateJurisdictionUnknownJurisdiction() {
	reportID := uuid.NewRandom()
	s.repo.On("GetIFTAReport", testutils.CtxMatcher, reportID).
		Return(&models.IFTAReport{ID: reportID, Status: constants.ReportDraft}, nil)

	_, err := s.svc.ValidateJurisdiction(context.Background(), reportID, "ZZ")
	assert.EqualError(s.T(), err, "no calculation found for jurisdiction ZZ")
}

func (s *ServiceTestSuite) TestApplyAdjustment() {
	reportID := uuid.NewRandom()
	report := &models.IFTAReport{
		ID:     reportID,
		Status: constants.ReportDraft,
		Calculations: []models.JurisdictionTaxCalculation{{
			ID:           uuid.NewRandom(),
			ReportID:     reportID,
			Jurisdiction: "IA",
			TaxDue:       decimal.RequireFromString("10.00"),
			IsValidated:  true,
		}},
	}

	s.repo.On("GetIFTAReport", testutils.CtxMatcher, reportID).Return(report, nil)
	s.repo.On("UpdateJurisdictionCalculation", testutils.CtxMatcher,
		mock.AnythingOfType("models.JurisdictionTaxCalculation")).Return(nil)

	calc, err := s.svc.ApplyAdjustment(context.Background(), reportID, "IA",
		decimal.RequireFromString("1.50"), decimal.RequireFromString("4.25"))
	assert.NoError(s.T(), err)
	assert.True(s.T(), calc.NetTaxDue.Equal(decimal.RequireFromString("7.25")))
	assert.False(s.T(), calc.IsValidated)
}

func (s *ServiceTestSuite) TestApplyAdjustmentRejectsSubmittedReport() {
	reportID := uuid.NewRandom()
	s.repo.On("GetIFTAReport", testutils.CtxMatcher, reportID).
		Return(&models.IFTAReport{ID: reportID, Status: constants.ReportSubmitted}, nil)

	_, err := s.svc.ApplyAdjustment(context.Background(), reportID, "IA", decimal.Zero, decimal.Zero)
	assert.ErrorIs(s.T(), err, ifta.ErrReportNotDraft)
}

func (s *ServiceTestSuite) TestSubmitIFTAReport() {
	reportID := uuid.NewRandom()
	report := &models.IFTAReport{
		ID:     reportID,
		Status: constants.ReportDraft,
		Calculations: []models.JurisdictionTaxCalculation{
			{ID: uuid.NewRandom(), ReportID: reportID, Jurisdiction: "IA", IsValidated: true},
		},
	}

	s.repo.On("GetIFTAReport", testutils.CtxMatcher, reportID).Return(report, nil)
	s.repo.On("UpdateReportStatusCheckStatus", testutils.CtxMatcher, reportID,
		constants.ReportDraft, constants.ReportSubmitted).Return(nil)

	assert.NoError(s.T(), s.svc.SubmitIFTAReport(context.Background(), reportID))
}

func (s *ServiceTestSuite) TestSubmitIFTAReportUnvalidated() {
	reportID := uuid.NewRandom()
	report := &models.IFTAReport{
		ID:     reportID,
		Status: constants.ReportDraft,
		Calculations: []models.JurisdictionTaxCalculation{
			{ID: uuid.NewRandom(), ReportID: reportID, Jurisdiction: "IA", IsValidated: false},
		},
	}

	s.repo.On("GetIFTAReport", testutils.CtxMatcher, reportID).Return(report, nil)

	err := s.svc.SubmitIFTAReport(context.Background(), reportID)
	assert.ErrorIs(s.T(), err, ifta.ErrUnvalidatedJurisdictions)
}

func (s *ServiceTestSuite) TestGetIFTAReportOverview() {
	reportID := uuid.NewRandom()
	report := &models.IFTAReport{
		ID:     reportID,
		Status: constants.ReportDraft,
		Calculations: []models.JurisdictionTaxCalculation{
			{ID: uuid.NewRandom(), ReportID: reportID, Jurisdiction: "IA", TotalMiles: 1000, FuelPurchased: 250, NetTaxDue: decimal.RequireFromString("-15.00"), IsValidated: true},
			{ID: uuid.NewRandom(), ReportID: reportID, Jurisdiction: "NE", TotalMiles: 500, FuelPurchased: 50, NetTaxDue: decimal.RequireFromString("10.00")},
		},
	}

	s.repo.On("GetIFTAReport", testutils.CtxMatcher, reportID).Return(report, nil)

	got, summary, err := s.svc.GetIFTAReportOverview(context.Background(), reportID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), report, got)
	assert.Equal(s.T(), 1500.0, summary.TotalMiles)
	assert.Equal(s.T(), 300.0, summary.TotalGallons)
	assert.True(s.T(), summary.TotalNetTaxDue.Equal(decimal.RequireFromString("-5.00")))
	assert.Equal(s.T(), 50, summary.ValidationProgress)
	assert.False(s.T(), summary.CanSubmit)
}
