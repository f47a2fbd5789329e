package compliance

import (
	"fmt"
	"sort"
	"time"

	"github.com/fleetscope/fleet-app/fleet/constants"
	"github.com/fleetscope/fleet-app/fleet/ifta"
	"github.com/fleetscope/fleet-app/fleet/models"
	"github.com/fleetscope/fleet-app/fleet/timeutil"
)

// UpcomingDeadlines builds the ranked deadline list: driver CDL and medical
// card expirations inside the 30-day window, document expirations (including
// already-expired documents, pinned at dueIn 0), and quarterly IFTA filing
// due dates. The result is sorted ascending by dueIn regardless of the
// order the records were evaluated in.
func UpcomingDeadlines(snap Snapshot, now time.Time) []models.DeadlineItem {
	var items []models.DeadlineItem

	for _, d := range snap.Drivers {
		if d.LicenseExpiration != nil &&
			timeutil.IsWithinNextDays(*d.LicenseExpiration, constants.ExpirationWarningDays, now) {
			items = append(items, expirationItem(constants.DeadlineDriverCDL, d.Name, *d.LicenseExpiration, now))
		}
		if d.MedicalCardExpiration != nil &&
			timeutil.IsWithinNextDays(*d.MedicalCardExpiration, constants.ExpirationWarningDays, now) {
			items = append(items, expirationItem(constants.DeadlineDriverMedicalCard, d.Name, *d.MedicalCardExpiration, now))
		}
	}

	for _, doc := range snap.Documents {
		if doc.ExpirationDate == nil {
			continue
		}
		if timeutil.IsPast(*doc.ExpirationDate, now) {
			items = append(items, models.DeadlineItem{
				Type:   constants.DeadlineDocumentExpired,
				Name:   doc.Name,
				DueIn:  0,
				Status: constants.DeadlineExpired,
			})
		} else if timeutil.IsWithinNextDays(*doc.ExpirationDate, constants.ExpirationWarningDays, now) {
			items = append(items, expirationItem(constants.DeadlineDocumentExpired, doc.Name, *doc.ExpirationDate, now))
		}
	}

	// Q4 of the prior year is due January 31 of the current one, so both
	// years' anchors are candidates.
	for _, year := range []int{now.Year() - 1, now.Year()} {
		for quarter := 1; quarter <= 4; quarter++ {
			due := ifta.QuarterDueDate(year, quarter)
			if !timeutil.IsWithinNextDays(due, constants.ExpirationWarningDays, now) {
				continue
			}
			dueIn := timeutil.DaysBetween(now, due)
			status := constants.DeadlineUpcoming
			if dueIn <= constants.UrgentDeadlineDays {
				status = constants.DeadlineDueSoon
			}
			items = append(items, models.DeadlineItem{
				Type:   constants.DeadlineIFTAFiling,
				Name:   fmt.Sprintf("Q%d %d fuel tax return", quarter, year),
				DueIn:  dueIn,
				Status: status,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].DueIn < items[j].DueIn })

	return items
}

func expirationItem(itemType, name string, expiration time.Time, now time.Time) models.DeadlineItem {
	dueIn := timeutil.DaysBetween(now, expiration)
	status := constants.DeadlineUpcoming
	if dueIn <= constants.UrgentDeadlineDays {
		status = constants.DeadlineExpiringSoon
	}
	return models.DeadlineItem{Type: itemType, Name: name, DueIn: dueIn, Status: status}
}
