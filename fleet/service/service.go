package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fleetscope/fleet-app/fleet/compliance"
	"github.com/fleetscope/fleet-app/fleet/constants"
	"github.com/fleetscope/fleet-app/fleet/hos"
	"github.com/fleetscope/fleet-app/fleet/ifta"
	"github.com/fleetscope/fleet-app/fleet/models"
	"github.com/fleetscope/fleet-app/fleet/repository"
	"github.com/fleetscope/fleet-app/fleet/timeutil"
	"github.com/fleetscope/fleet-app/log"
)

// Ensure service satisfies the interface
var _ Service = &service{}

// Service contains all of the methods needed to evaluate compliance and tax
// state for one organization. Every method that depends on the clock takes
// an explicit now so results are reproducible.
type Service interface {
	GetComplianceSummary(ctx context.Context, orgID uuid.UUID, now time.Time) (models.ComplianceMetrics, error)

	GetUpcomingDeadlines(ctx context.Context, orgID uuid.UUID, now time.Time) ([]models.DeadlineItem, error)

	GetDriverHOSStatus(ctx context.Context, driverID uuid.UUID, now time.Time) (models.HOSStatusResult, error)

	GenerateIFTAReport(ctx context.Context, orgID uuid.UUID, year, quarter int, rates ifta.RateTable) (*models.IFTAReport, error)

	GetIFTAReportOverview(ctx context.Context, reportID uuid.UUID) (*models.IFTAReport, models.ReportSummary, error)

	ValidateJurisdiction(ctx context.Context, reportID uuid.UUID, jurisdiction string) (ifta.ValidationResult, error)

	ApplyAdjustment(ctx context.Context, reportID uuid.UUID, jurisdiction string, adjustments, credits decimal.Decimal) (models.JurisdictionTaxCalculation, error)

	SubmitIFTAReport(ctx context.Context, reportID uuid.UUID) error
}

func NewService(r repository.Repository, cfg *Config) Service {
	evaluator := hos.EditedLogHeuristic{LookbackDays: cfg.EditedLogLookbackDays}
	return &service{
		repository:      r,
		logger:          log.Engine,
		evaluator:       evaluator,
		hosLookbackDays: cfg.HOSLookbackDays,
	}
}

type service struct {
	repository repository.Repository

	logger logrus.FieldLogger

	evaluator       hos.RuleEvaluator
	hosLookbackDays int
}

func (s *service) GetComplianceSummary(ctx context.Context, orgID uuid.UUID, now time.Time) (models.ComplianceMetrics, error) {
	snap, err := s.loadSnapshot(ctx, orgID, now)
	if err != nil {
		return models.ComplianceMetrics{}, err
	}

	metrics, skipped := compliance.SummaryMetrics(snap, s.evaluator, now)
	for _, skipErr := range skipped {
		s.logger.WithField("organization_id", orgID.String()).
			Warnf("skipped record during compliance aggregation: %s", skipErr)
	}

	return metrics, nil
}

func (s *service) GetUpcomingDeadlines(ctx context.Context, orgID uuid.UUID, now time.Time) ([]models.DeadlineItem, error) {
	snap, err := s.loadSnapshot(ctx, orgID, now)
	if err != nil {
		return nil, err
	}

	return compliance.UpcomingDeadlines(snap, now), nil
}

func (s *service) GetDriverHOSStatus(ctx context.Context, driverID uuid.UUID, now time.Time) (models.HOSStatusResult, error) {
	// Drive and on-duty limits are per day, so only the current day's log
	// feeds the status calculation. Prior days are the evaluator's concern.
	since := timeutil.TruncateToDay(now)
	logs, err := s.repository.GetHOSLogs(ctx, driverID, since)
	if err != nil {
		return models.HOSStatusResult{}, errors.Wrap(err, "failed to load duty logs")
	}

	return hos.CalculateStatus(logs)
}

func (s *service) GenerateIFTAReport(ctx context.Context, orgID uuid.UUID, year, quarter int, rates ifta.RateTable) (*models.IFTAReport, error) {
	start, end, err := quarterBounds(year, quarter)
	if err != nil {
		return nil, err
	}

	trips, err := s.repository.GetTripRecords(ctx, orgID, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load trip records")
	}
	fuel, err := s.repository.GetFuelPurchases(ctx, orgID, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load fuel purchases")
	}

	report := models.IFTAReport{
		ID:             uuid.NewRandom(),
		OrganizationID: orgID,
		Year:           year,
		Quarter:        quarter,
		Status:         constants.ReportDraft,
	}

	report.Calculations, err = ifta.BuildCalculations(report.ID, trips, fuel, rates)
	if err != nil {
		return nil, err
	}

	if err := s.repository.CreateIFTAReport(ctx, report); err != nil {
		return nil, errors.Wrap(err, "failed to persist report")
	}
	for _, calc := range report.Calculations {
		if err := s.repository.CreateJurisdictionCalculation(ctx, calc); err != nil {
			return nil, errors.Wrapf(err, "failed to persist calculation for %s", calc.Jurisdiction)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"organization_id": orgID.String(),
		"report_id":       report.ID.String(),
		"year":            year,
		"quarter":         quarter,
	}).Infof("generated fuel tax report with %d jurisdictions", len(report.Calculations))

	return &report, nil
}

func (s *service) GetIFTAReportOverview(ctx context.Context, reportID uuid.UUID) (*models.IFTAReport, models.ReportSummary, error) {
	report, err := s.repository.GetIFTAReport(ctx, reportID)
	if err != nil {
		return nil, models.ReportSummary{}, err
	}

	return report, ifta.Summarize(*report), nil
}

func (s *service) ValidateJurisdiction(ctx context.Context, reportID uuid.UUID, jurisdiction string) (ifta.ValidationResult, error) {
	report, err := s.repository.GetIFTAReport(ctx, reportID)
	if err != nil {
		return ifta.ValidationResult{}, err
	}

	calc, err := findCalculation(report, jurisdiction)
	if err != nil {
		return ifta.ValidationResult{}, err
	}

	result := ifta.Validate(calc)
	if err := s.repository.UpdateJurisdictionCalculation(ctx, *calc); err != nil {
		return ifta.ValidationResult{}, errors.Wrap(err, "failed to persist validation result")
	}

	return result, nil
}

func (s *service) ApplyAdjustment(ctx context.Context, reportID uuid.UUID, jurisdiction string, adjustments, credits decimal.Decimal) (models.JurisdictionTaxCalculation, error) {
	report, err := s.repository.GetIFTAReport(ctx, reportID)
	if err != nil {
		return models.JurisdictionTaxCalculation{}, err
	}
	if report.Status != constants.ReportDraft {
		return models.JurisdictionTaxCalculation{}, ifta.ErrReportNotDraft
	}

	calc, err := findCalculation(report, jurisdiction)
	if err != nil {
		return models.JurisdictionTaxCalculation{}, err
	}

	ifta.ApplyAdjustment(calc, adjustments, credits)
	if err := s.repository.UpdateJurisdictionCalculation(ctx, *calc); err != nil {
		return models.JurisdictionTaxCalculation{}, errors.Wrap(err, "failed to persist adjustment")
	}

	return *calc, nil
}

func (s *service) SubmitIFTAReport(ctx context.Context, reportID uuid.UUID) error {
	report, err := s.repository.GetIFTAReport(ctx, reportID)
	if err != nil {
		return err
	}

	if err := ifta.Submit(report); err != nil {
		return err
	}

	if err := s.repository.UpdateReportStatusCheckStatus(ctx, reportID,
		constants.ReportDraft, constants.ReportSubmitted); err != nil {
		return errors.Wrap(err, "failed to persist report submission")
	}

	s.logger.WithField("report_id", reportID.String()).Info("fuel tax report submitted")

	return nil
}

func (s *service) loadSnapshot(ctx context.Context, orgID uuid.UUID, now time.Time) (compliance.Snapshot, error) {
	var snap compliance.Snapshot
	var err error

	if snap.Drivers, err = s.repository.GetDriversByOrg(ctx, orgID); err != nil {
		return compliance.Snapshot{}, errors.Wrap(err, "failed to load drivers")
	}
	if snap.Vehicles, err = s.repository.GetVehiclesByOrg(ctx, orgID); err != nil {
		return compliance.Snapshot{}, errors.Wrap(err, "failed to load vehicles")
	}
	if snap.Documents, err = s.repository.GetDocumentsByOrg(ctx, orgID); err != nil {
		return compliance.Snapshot{}, errors.Wrap(err, "failed to load documents")
	}

	since := now.Add(-time.Duration(s.hosLookbackDays) * constants.HoursInDay)
	snap.HOSLogs = make(map[string][]models.HOSLog, len(snap.Drivers))
	for _, d := range snap.Drivers {
		if len(d.ID) == 0 {
			continue
		}
		logs, err := s.repository.GetHOSLogs(ctx, d.ID, since)
		if err != nil {
			return compliance.Snapshot{}, errors.Wrapf(err, "failed to load duty logs for driver %s", d.ID)
		}
		snap.HOSLogs[d.ID.String()] = logs
	}

	return snap, nil
}

func findCalculation(report *models.IFTAReport, jurisdiction string) (*models.JurisdictionTaxCalculation, error) {
	for i := range report.Calculations {
		if report.Calculations[i].Jurisdiction == jurisdiction {
			return &report.Calculations[i], nil
		}
	}
	return nil, fmt.Errorf("no calculation found for jurisdiction %s", jurisdiction)
}

func quarterBounds(year, quarter int) (start, end time.Time, err error) {
	if quarter < 1 || quarter > 4 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid quarter %d", quarter)
	}
	startMonth := time.Month(3*(quarter-1) + 1)
	start = time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 3, 0)
	return start, end, nil
}
