package scheduler

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/arnavshah/carpool-scheduler-api/pkg/models"
)

// Shuffler randomizes the order riders are considered in. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Scheduler assigns riders to drivers' cars day by day
type Scheduler struct {
	rng    Shuffler
	logger *log.Logger
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithShuffler sets the source of rider ordering
func WithShuffler(s Shuffler) Option {
	return func(sc *Scheduler) { sc.rng = s }
}

// WithSeed makes rider ordering reproducible
func WithSeed(seed int64) Option {
	return func(sc *Scheduler) { sc.rng = rand.New(rand.NewSource(seed)) }
}

// WithLogger reports unmatched riders and per-day seat counts to l
func WithLogger(l *log.Logger) Option {
	return func(sc *Scheduler) { sc.logger = l }
}

// NewScheduler creates a new scheduler instance
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// GenerateSchedule allocates every day in days, in order. Each day starts
// from the drivers' nominal seat counts, so days never affect each other.
func (s *Scheduler) GenerateSchedule(riders []*models.Rider, drivers []*models.Driver, days []models.Day) (models.Schedule, error) {
	schedule := make(models.Schedule, 0, len(days))
	for _, day := range days {
		ds, err := s.AllocateDay(riders, drivers, day)
		if err != nil {
			return nil, fmt.Errorf("generate schedule: %w", err)
		}
		schedule = append(schedule, ds)
	}
	return schedule, nil
}

// AllocateDay fills drivers' cars for a single day.
//
// Riders are visited once each in a freshly shuffled order. A rider is placed
// with the location-compatible driver that still has a seat and whose
// departure time is closest to one the rider accepts; on equal time deltas
// the driver listed first wins. Riders that cannot be placed are reported in
// the result's Unmatched list rather than retried.
func (s *Scheduler) AllocateDay(riders []*models.Rider, drivers []*models.Driver, day models.Day) (models.DaySchedule, error) {
	result := models.DaySchedule{Day: day, Cars: []models.Car{}}

	seats := NewSeatTracker(drivers)
	seatsLeft := seats.Total(day)
	s.logf("day=%s seats=%d riders=%d drivers=%d", day, seatsLeft, len(riders), len(drivers))

	order := make([]*models.Rider, len(riders))
	copy(order, riders)
	s.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	// driver index -> position in result.Cars
	carOf := make(map[int]int)

	next := 0
	for ; seatsLeft > 0 && next < len(order); next++ {
		rider := order[next]
		if !rider.RidesOn(day) {
			continue
		}

		best := -1
		bestDelta := 0.0
		fullCount := 0
		locationCount := 0

		for i, driver := range drivers {
			if seats.Remaining(i) <= 0 {
				if driver.RidesOn(day) {
					fullCount++
				}
				continue
			}
			if !LocationsCompatible(rider, driver, day) {
				if driver.RidesOn(day) {
					locationCount++
				}
				continue
			}

			delta, err := TimeDelta(rider, driver, day)
			if err != nil {
				return models.DaySchedule{}, fmt.Errorf("allocate %s: %w", day, err)
			}
			if best < 0 || delta < bestDelta {
				best = i
				bestDelta = delta
			}
		}

		if best < 0 {
			s.unmatched(&result, rider, unmatchedReason(fullCount, locationCount))
			continue
		}

		if err := seats.Take(best); err != nil {
			return models.DaySchedule{}, fmt.Errorf("allocate %s: %w", day, err)
		}
		seatsLeft--

		if ci, ok := carOf[best]; ok {
			result.Cars[ci].Riders = append(result.Cars[ci].Riders, rider)
		} else {
			carOf[best] = len(result.Cars)
			result.Cars = append(result.Cars, models.Car{
				Driver: drivers[best],
				Riders: []*models.Rider{rider},
			})
		}
	}

	// Seats ran out before everyone was considered
	for _, rider := range order[next:] {
		if rider.RidesOn(day) {
			s.unmatched(&result, rider, "no seats remaining")
		}
	}

	return result, nil
}

func (s *Scheduler) unmatched(result *models.DaySchedule, rider *models.Rider, reason string) {
	result.Unmatched = append(result.Unmatched, models.Unmatched{
		Rider:  rider.Name,
		Day:    result.Day,
		Reason: reason,
	})
	s.logf("day=%s rider=%q unmatched reason=%q", result.Day, rider.Name, reason)
}

func unmatchedReason(fullCount, locationCount int) string {
	var reasons []string
	if fullCount > 0 {
		reasons = append(reasons, fmt.Sprintf("%d drivers were full", fullCount))
	}
	if locationCount > 0 {
		reasons = append(reasons, fmt.Sprintf("%d drivers had no shared location", locationCount))
	}
	if len(reasons) == 0 {
		return "no drivers for this day"
	}
	return strings.Join(reasons, "; ")
}

func (s *Scheduler) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// Refs returns pointers into xs, for handing decoded records to the scheduler
func Refs[T any](xs []T) []*T {
	out := make([]*T, len(xs))
	for i := range xs {
		out[i] = &xs[i]
	}
	return out
}

// FilterDuesPayers keeps only the riders who paid club dues
func FilterDuesPayers(riders []*models.Rider) []*models.Rider {
	payers := make([]*models.Rider, 0, len(riders))
	for _, r := range riders {
		if r.IsDuesPaying {
			payers = append(payers, r)
		}
	}
	return payers
}
