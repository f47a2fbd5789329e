// Package testutils provides shared helpers for unit tests: synthetic fleet
// records and env manipulation around the conf package.
package testutils

import (
	"context"
	"log"
	"testing"
	"time"

	randomdata "github.com/Pallinder/go-randomdata"
	"github.com/pborman/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fleetscope/fleet-app/conf"
	"github.com/fleetscope/fleet-app/fleet/constants"
	"github.com/fleetscope/fleet-app/fleet/models"
)

// CtxMatcher allow us to validate that the caller supplied a context.Context argument
// See: https://github.com/stretchr/testify/issues/519
var CtxMatcher = mock.MatchedBy(func(ctx context.Context) bool { return true })

// RandomDriver returns a synthetic compliant driver for the given
// organization, with both expirations a year out.
func RandomDriver(orgID uuid.UUID, now time.Time) models.Driver {
	expiration := now.Add(365 * constants.HoursInDay)
	return models.Driver{
		ID:                    uuid.NewRandom(),
		OrganizationID:        orgID,
		Name:                  randomdata.FullName(randomdata.RandomGender),
		LicenseExpiration:     &expiration,
		MedicalCardExpiration: &expiration,
	}
}

// RandomVehicle returns a synthetic active vehicle with a recent passing
// inspection.
func RandomVehicle(orgID uuid.UUID, now time.Time) models.Vehicle {
	inspected := now.Add(-10 * constants.HoursInDay)
	passed := true
	return models.Vehicle{
		ID:                   uuid.NewRandom(),
		OrganizationID:       orgID,
		UnitNumber:           randomdata.Alphanumeric(6),
		Status:               constants.VehicleActive,
		LastInspectionDate:   &inspected,
		LastInspectionPassed: &passed,
	}
}

// RandomDocument returns a synthetic active company document with no
// expiration on file.
func RandomDocument(orgID uuid.UUID) models.Document {
	return models.Document{
		ID:             uuid.NewRandom(),
		OrganizationID: orgID,
		Name:           randomdata.SillyName(),
		Type:           "permit",
		Status:         constants.DocumentActive,
		AssignedTo:     models.AssignedToCompany,
	}
}

func setEnv(why, key, value string) {
	if err := conf.SetEnv(&testing.T{}, key, value); err != nil {
		log.Printf("Error %s env value %s to %s\n", why, key, value)
	}
}

// SetAndRestoreEnvKey replaces the current value of the env var key,
// returning a function which can be used to restore the original value
func SetAndRestoreEnvKey(key, value string) func() {
	originalValue := conf.GetEnv(key)
	setEnv("setting", key, value)
	return func() {
		setEnv("restoring", key, originalValue)
	}
}
