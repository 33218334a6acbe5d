// Package loader turns roster files into rider and driver records.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/arnavshah/carpool-scheduler-api/pkg/models"
)

var ErrBadTime = errors.New("bad time")

// TimeValue is a departure time in decimal hours. In JSON it may be
// given either as a number (19.5) or as a clock string ("7:30 PM").
type TimeValue float64

func (t *TimeValue) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*t = TimeValue(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("time value %s: %w", b, ErrBadTime)
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = TimeValue(parsed)
	return nil
}

// DayRecord is one day's preferences in a roster file
type DayRecord struct {
	Day       models.Day        `json:"day"`
	Times     []TimeValue       `json:"times"`
	Locations []models.Location `json:"locations"`
}

// MemberRecord is one entry in a JSON roster
type MemberRecord struct {
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	IsDriver     bool        `json:"is_driver"`
	IsDuesPaying bool        `json:"is_dues_paying"`
	CarType      string      `json:"car_type"`
	Seats        int         `json:"seats"`
	Days         []DayRecord `json:"days"`
}

func (m MemberRecord) member() models.Member {
	days := make([]models.DayInfo, 0, len(m.Days))
	for _, d := range m.Days {
		times := make([]float64, len(d.Times))
		for i, t := range d.Times {
			times[i] = float64(t)
		}
		days = append(days, models.DayInfo{Day: d.Day, Times: times, Locations: d.Locations})
	}
	return models.Member{
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		Days:         days,
		IsDuesPaying: m.IsDuesPaying,
	}
}

// SplitMembers separates roster entries into riders and drivers
func SplitMembers(records []MemberRecord) ([]models.Rider, []models.Driver) {
	var riders []models.Rider
	var drivers []models.Driver
	for _, rec := range records {
		if rec.IsDriver {
			drivers = append(drivers, models.Driver{Member: rec.member(), CarType: rec.CarType, Seats: rec.Seats})
		} else {
			riders = append(riders, models.Rider{Member: rec.member()})
		}
	}
	return riders, drivers
}

// ReadJSON decodes a JSON roster (an array of MemberRecord)
func ReadJSON(r io.Reader) ([]models.Rider, []models.Driver, error) {
	var records []MemberRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, nil, fmt.Errorf("read roster: %w", err)
	}
	riders, drivers := SplitMembers(records)
	return riders, drivers, nil
}

// ReadJSONFile opens and decodes a JSON roster
func ReadJSONFile(path string) ([]models.Rider, []models.Driver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read roster %q: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ParseTime converts a clock time ("7:30 PM", "19:30") to decimal hours (19.5)
func ParseTime(s string) (float64, error) {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(s)))
	if len(fields) == 0 || len(fields) > 2 {
		return 0, fmt.Errorf("parse time %q: %w", s, ErrBadTime)
	}

	hm := strings.Split(fields[0], ":")
	if len(hm) != 2 {
		return 0, fmt.Errorf("parse time %q: %w", s, ErrBadTime)
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", s, ErrBadTime)
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("parse time %q: %w", s, ErrBadTime)
	}

	if len(fields) == 2 {
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("parse time %q: %w", s, ErrBadTime)
		}
		switch fields[1] {
		case "AM":
			if hour == 12 {
				hour = 0
			}
		case "PM":
			if hour != 12 {
				hour += 12
			}
		default:
			return 0, fmt.Errorf("parse time %q: %w", s, ErrBadTime)
		}
	} else if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("parse time %q: %w", s, ErrBadTime)
	}

	return float64(hour) + float64(minute)/60, nil
}
