package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownDay      = errors.New("unknown day")
	ErrUnknownLocation = errors.New("unknown location")
)

// Day is one of the seven weekdays a carpool can run on
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

func (d Day) String() string {
	if d < Monday || d > Sunday {
		return "UNDEF"
	}
	return dayNames[d]
}

// ParseDay converts a weekday name (any case) into a Day
func ParseDay(s string) (Day, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range dayNames {
		if n == name {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("parse day %q: %w", s, ErrUnknownDay)
}

// ParseDays parses a list of day names, keeping their order
func ParseDays(names []string) ([]Day, error) {
	days := make([]Day, 0, len(names))
	for _, n := range names {
		d, err := ParseDay(n)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Location is a campus meeting point riders and drivers depart from
type Location int

const (
	North Location = iota + 1
	Central
)

func (l Location) String() string {
	switch l {
	case North:
		return "NORTH"
	case Central:
		return "CENTRAL"
	}
	return "UNDEF"
}

// ParseLocation accepts the tag names as well as the labels used on the sign-up form
func ParseLocation(s string) (Location, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NORTH", "NORTH CAMPUS (PIERPONT COMMONS)":
		return North, nil
	case "CENTRAL", "CENTRAL CAMPUS (THE CUBE)":
		return Central, nil
	}
	return 0, fmt.Errorf("parse location %q: %w", s, ErrUnknownLocation)
}

func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Location) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseLocation(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// DayInfo holds the departure times (decimal hours) and meeting locations
// a member accepts on one day
type DayInfo struct {
	Day       Day        `json:"day"`
	Times     []float64  `json:"times"`
	Locations []Location `json:"locations"`
}

// Member is the information shared by riders and drivers
type Member struct {
	Name         string    `json:"name" validate:"required"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Days         []DayInfo `json:"days"`
	IsDuesPaying bool      `json:"is_dues_paying"`
}

// DayInfo returns the member's preferences for day, if they signed up for it
func (m *Member) DayInfo(day Day) (DayInfo, bool) {
	for _, d := range m.Days {
		if d.Day == day {
			return d, true
		}
	}
	return DayInfo{}, false
}

// RidesOn reports whether the member takes part in the carpool on day
func (m *Member) RidesOn(day Day) bool {
	_, ok := m.DayInfo(day)
	return ok
}

func (m *Member) Times(day Day) []float64 {
	d, _ := m.DayInfo(day)
	return d.Times
}

func (m *Member) Locations(day Day) []Location {
	d, _ := m.DayInfo(day)
	return d.Locations
}

// Driver is a member with a car offering seats to riders
type Driver struct {
	Member
	CarType string `json:"car_type"`
	Seats   int    `json:"seats" validate:"gte=0"`
}

// Rider is a member looking for a seat
type Rider struct {
	Member
}

// Car is one driver and the riders assigned to them for a day
type Car struct {
	Driver *Driver  `json:"driver"`
	Riders []*Rider `json:"riders"`
}

// Unmatched records a rider that could not be placed on a day
type Unmatched struct {
	Rider  string `json:"rider"`
	Day    Day    `json:"day"`
	Reason string `json:"reason"`
}

// DaySchedule is the allocation result for a single day
type DaySchedule struct {
	Day       Day         `json:"day"`
	Cars      []Car       `json:"cars"`
	Unmatched []Unmatched `json:"unmatched,omitempty"`
}

// Schedule holds one DaySchedule per enabled day, in the order the days were requested
type Schedule []DaySchedule

// DayStats summarises how well a day was filled
type DayStats struct {
	Day            Day     `json:"day"`
	SeatsOffered   int     `json:"seats_offered"`
	RidersPlaced   int     `json:"riders_placed"`
	RidersUnplaced int     `json:"riders_unplaced"`
	FillRate       float64 `json:"fill_rate"`
}

// ScheduleInput is the data structure for the scheduling endpoint
type ScheduleInput struct {
	Riders   []Rider  `json:"riders"`
	Drivers  []Driver `json:"drivers"`
	Days     []Day    `json:"days"`
	DuesOnly *bool    `json:"dues_only,omitempty"`
	Seed     int64    `json:"seed,omitempty"`
}

// ScheduleResponse is the data structure for the scheduling result
type ScheduleResponse struct {
	RunID    string     `json:"run_id"`
	Schedule Schedule   `json:"schedule"`
	Stats    []DayStats `json:"stats"`
}
