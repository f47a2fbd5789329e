// Package hos turns a driver's duty logs into an actionable status against
// the federal 11-hour driving and 14-hour on-duty windows.
package hos

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/fleetscope/fleet-app/fleet/constants"
	customErrors "github.com/fleetscope/fleet-app/fleet/errors"
	"github.com/fleetscope/fleet-app/fleet/models"
	"github.com/fleetscope/fleet-app/fleet/timeutil"
)

// CalculateStatus computes the current duty status, consumed and available
// minutes, and the compliance verdict for the supplied logs. The logs
// typically cover the current day but may span a multi-day window.
//
// Malformed input (negative durations, overlapping entries) is rejected
// before any aggregation; bad data is never clamped into a false
// "compliant" result. Entries are re-sorted chronologically if the caller
// did not pre-sort them.
func CalculateStatus(logs []models.HOSLog) (models.HOSStatusResult, error) {
	var entries []models.HOSEntry
	for _, l := range logs {
		entries = append(entries, l.Entries...)
	}

	if err := validateEntries(entries); err != nil {
		return models.HOSStatusResult{}, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartTime.Before(entries[j].StartTime)
	})

	// Overlap detection requires the chronological ordering above.
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if timeutil.RangesOverlap(prev.StartTime, prev.EndTime, cur.StartTime, cur.EndTime) {
			return models.HOSStatusResult{}, &customErrors.EntityValidationError{
				Err:        errors.Errorf("entry overlaps previous entry %s", prev.ID),
				EntityType: "hos_entry",
				EntityID:   cur.ID.String(),
			}
		}
	}

	result := models.HOSStatusResult{CurrentStatus: constants.DutyStatusOffDuty}
	for _, e := range entries {
		switch e.Status {
		case constants.DutyStatusDriving:
			result.UsedDriveTime += e.Duration()
			result.UsedOnDutyTime += e.Duration()
		case constants.DutyStatusOnDuty:
			result.UsedOnDutyTime += e.Duration()
		}
	}

	if len(entries) > 0 {
		result.CurrentStatus = entries[len(entries)-1].Status
	}

	result.AvailableDriveTime = max(0, constants.MaxDriveMinutes-result.UsedDriveTime)
	result.AvailableOnDutyTime = max(0, constants.MaxOnDutyMinutes-result.UsedOnDutyTime)

	// Exactly at the limit is compliant; the check is strictly greater-than.
	if result.UsedDriveTime > constants.MaxDriveMinutes ||
		result.UsedOnDutyTime > constants.MaxOnDutyMinutes {
		result.ComplianceStatus = constants.HOSViolation
	} else {
		result.ComplianceStatus = constants.HOSCompliant
	}

	return result, nil
}

// ComputeLogTotals fills in the derived totals and per-day compliance status
// of a single log. The entries are validated the same way CalculateStatus
// validates them.
func ComputeLogTotals(l *models.HOSLog) error {
	result, err := CalculateStatus([]models.HOSLog{*l})
	if err != nil {
		return err
	}

	l.TotalDriveTime = result.UsedDriveTime
	l.TotalOnDutyTime = result.UsedOnDutyTime
	l.TotalOffDutyTime = 0
	for _, e := range l.Entries {
		if e.Status == constants.DutyStatusOffDuty || e.Status == constants.DutyStatusSleeperBerth {
			l.TotalOffDutyTime += e.Duration()
		}
	}
	l.ComplianceStatus = result.ComplianceStatus

	return nil
}

func validateEntries(entries []models.HOSEntry) error {
	for _, e := range entries {
		if e.EndTime.Before(e.StartTime) {
			return &customErrors.EntityValidationError{
				Err:        errors.New("entry has negative duration"),
				EntityType: "hos_entry",
				EntityID:   e.ID.String(),
			}
		}
		switch e.Status {
		case constants.DutyStatusDriving, constants.DutyStatusOnDuty,
			constants.DutyStatusOffDuty, constants.DutyStatusSleeperBerth:
		default:
			return &customErrors.EntityValidationError{
				Err:        errors.Errorf("unknown duty status %q", e.Status),
				EntityType: "hos_entry",
				EntityID:   e.ID.String(),
			}
		}
	}
	return nil
}

// RuleEvaluator decides whether a driver's recent logs contain an HOS
// violation. Implementations range from cheap heuristics to full multi-day
// rule sets; callers depend only on this interface so evaluators can be
// swapped without touching the aggregation layer.
type RuleEvaluator interface {
	HasViolation(logs []models.HOSLog, now time.Time) bool
}

// EditedLogHeuristic treats a manually edited log inside the lookback
// window as evidence of a violation, alongside any day whose recorded
// totals already exceed a daily limit. It deliberately does not attempt the
// 30-minute break or 70-hour/8-day rules.
type EditedLogHeuristic struct {
	LookbackDays int
}

// Edits older than a week are routine corrections, not violation evidence.
const defaultEditedLogLookbackDays = 7

var _ RuleEvaluator = EditedLogHeuristic{}

func (h EditedLogHeuristic) HasViolation(logs []models.HOSLog, now time.Time) bool {
	lookback := h.LookbackDays
	if lookback <= 0 {
		lookback = defaultEditedLogLookbackDays
	}

	cutoff := now.Add(-time.Duration(lookback) * constants.HoursInDay)
	for _, l := range logs {
		if l.Date.Before(cutoff) {
			continue
		}
		if l.Edited || l.ComplianceStatus == constants.HOSViolation {
			return true
		}
	}

	return false
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
