package loader

import (
	"errors"
	"fmt"

	"github.com/arnavshah/carpool-scheduler-api/pkg/models"
	"github.com/go-playground/validator/v10"
)

// Validator checks rosters before they reach the scheduler
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a roster validator. A nil validate gets a default instance.
func NewValidator(validate *validator.Validate) *Validator {
	if validate == nil {
		validate = validator.New()
	}
	return &Validator{validate: validate}
}

// Validate reports every problem found in the roster: missing names,
// negative seat counts, duplicate names, repeated days and drivers that do
// not list exactly one departure time for a day.
func (v *Validator) Validate(riders []models.Rider, drivers []models.Driver) error {
	var errs []error

	seen := make(map[string]bool)
	checkMember := func(kind string, m *models.Member) {
		if m.Name != "" && seen[kind+m.Name] {
			errs = append(errs, fmt.Errorf("duplicate %s: %s", kind, m.Name))
		}
		seen[kind+m.Name] = true

		days := make(map[models.Day]bool)
		for _, d := range m.Days {
			if days[d.Day] {
				errs = append(errs, fmt.Errorf("%s %s: %s listed twice", kind, m.Name, d.Day))
			}
			days[d.Day] = true
		}
	}

	for i := range riders {
		if err := v.validate.Struct(&riders[i]); err != nil {
			errs = append(errs, fmt.Errorf("rider %d: %w", i, err))
		}
		checkMember("rider", &riders[i].Member)
	}

	for i := range drivers {
		d := &drivers[i]
		if err := v.validate.Struct(d); err != nil {
			errs = append(errs, fmt.Errorf("driver %d: %w", i, err))
		}
		checkMember("driver", &d.Member)
		for _, day := range d.Days {
			if len(day.Times) != 1 {
				errs = append(errs, fmt.Errorf("driver %s: %s has %d departure times, want 1", d.Name, day.Day, len(day.Times)))
			}
		}
	}

	return errors.Join(errs...)
}
