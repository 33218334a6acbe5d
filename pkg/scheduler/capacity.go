package scheduler

import (
	"errors"
	"fmt"

	"github.com/arnavshah/carpool-scheduler-api/pkg/models"
)

// ErrNoSeats is returned when taking a seat from a full car
var ErrNoSeats = errors.New("no seats remaining")

// SeatTracker holds the remaining seat count of every driver for one day.
// Drivers are identified by their index in the list the tracker was built from,
// so the caller's driver records are never mutated.
type SeatTracker struct {
	drivers   []*models.Driver
	remaining []int
}

// NewSeatTracker starts every driver at their nominal seat count
func NewSeatTracker(drivers []*models.Driver) *SeatTracker {
	t := &SeatTracker{
		drivers:   drivers,
		remaining: make([]int, len(drivers)),
	}
	for i, d := range drivers {
		t.remaining[i] = max(d.Seats, 0)
	}
	return t
}

// Remaining returns the open seats for driver i
func (t *SeatTracker) Remaining(i int) int {
	return t.remaining[i]
}

// Take books one seat in driver i's car
func (t *SeatTracker) Take(i int) error {
	if t.remaining[i] <= 0 {
		return fmt.Errorf("take seat from %s: %w", t.drivers[i].Name, ErrNoSeats)
	}
	t.remaining[i]--
	return nil
}

// Total returns the open seats across drivers who signed up for day
func (t *SeatTracker) Total(day models.Day) int {
	total := 0
	for i, d := range t.drivers {
		if d.RidesOn(day) {
			total += t.remaining[i]
		}
	}
	return total
}
