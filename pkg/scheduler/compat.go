package scheduler

import (
	"errors"
	"fmt"
	"math"

	"github.com/arnavshah/carpool-scheduler-api/pkg/models"
)

// ErrMalformedDriverTimes means a driver did not list exactly one departure time for a day
var ErrMalformedDriverTimes = errors.New("driver must have exactly one departure time")

// LocationsCompatible checks if the rider and driver share a meeting location on day.
// A member without preferences for the day has no locations.
func LocationsCompatible(rider *models.Rider, driver *models.Driver, day models.Day) bool {
	for _, rl := range rider.Locations(day) {
		for _, dl := range driver.Locations(day) {
			if rl == dl {
				return true
			}
		}
	}
	return false
}

// TimeDelta returns the smallest gap in hours between the driver's departure
// time and any time the rider accepts. A rider with no times gets +Inf.
func TimeDelta(rider *models.Rider, driver *models.Driver, day models.Day) (float64, error) {
	driverTimes := driver.Times(day)
	if len(driverTimes) != 1 {
		return 0, fmt.Errorf("time delta: %s on %s has %d times: %w",
			driver.Name, day, len(driverTimes), ErrMalformedDriverTimes)
	}
	departs := driverTimes[0]

	best := math.Inf(1)
	for _, t := range rider.Times(day) {
		if d := math.Abs(t - departs); d < best {
			best = d
		}
	}
	return best, nil
}
