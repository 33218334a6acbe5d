package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arnavshah/carpool-scheduler-api/pkg/config"
	"github.com/arnavshah/carpool-scheduler-api/pkg/models"
)

// FormReader parses the sign-up form responses export
type FormReader struct {
	Columns config.Columns
	Days    []models.Day
	// Uniqnames of members who paid dues; nil means nobody is marked as paying
	DuesPayers map[string]bool
}

// NewFormReader creates a reader for the given column layout and enabled days
func NewFormReader(cols config.Columns, days []models.Day, duesPayers map[string]bool) *FormReader {
	return &FormReader{Columns: cols, Days: days, DuesPayers: duesPayers}
}

// Read parses the responses CSV. The first row is the header.
func (f *FormReader) Read(r io.Reader) ([]models.Rider, []models.Driver, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		return nil, nil, fmt.Errorf("read responses header: %w", err)
	}

	var riders []models.Rider
	var drivers []models.Driver
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read responses line %d: %w", line, err)
		}

		isDriver := f.cell(row, f.Columns.IsDriver) == "Yes"
		isRider := f.cell(row, f.Columns.IsRider) == "Yes"

		if isDriver {
			member, err := f.member(row, f.Columns.DaysInfoStart+2*len(f.Days))
			if err != nil {
				return nil, nil, fmt.Errorf("read responses line %d: %w", line, err)
			}
			seats, err := strconv.Atoi(f.cell(row, f.Columns.Seats))
			if err != nil {
				return nil, nil, fmt.Errorf("read responses line %d: seats: %w", line, err)
			}
			drivers = append(drivers, models.Driver{
				Member:  member,
				CarType: f.cell(row, f.Columns.CarType),
				Seats:   seats,
			})
		}

		if isRider {
			member, err := f.member(row, f.Columns.DaysInfoStart)
			if err != nil {
				return nil, nil, fmt.Errorf("read responses line %d: %w", line, err)
			}
			riders = append(riders, models.Rider{Member: member})
		}
	}

	return riders, drivers, nil
}

func (f *FormReader) member(row []string, start int) (models.Member, error) {
	email := f.cell(row, f.Columns.Email)
	days, err := f.days(row, start)
	if err != nil {
		return models.Member{}, err
	}
	return models.Member{
		Name:         f.cell(row, f.Columns.Name),
		Email:        email,
		Phone:        f.cell(row, f.Columns.Phone),
		Days:         days,
		IsDuesPaying: f.DuesPayers[Uniqname(email)],
	}, nil
}

// days reads the location cells for each enabled day starting at start and
// the matching time cells right after them. An empty location cell means the
// member is not taking part that day.
func (f *FormReader) days(row []string, start int) ([]models.DayInfo, error) {
	var days []models.DayInfo
	n := len(f.Days)
	for i, day := range f.Days {
		locCell := f.cell(row, start+i)
		if locCell == "" {
			continue
		}

		info := models.DayInfo{Day: day}
		for _, l := range splitList(locCell) {
			loc, err := models.ParseLocation(l)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", day, err)
			}
			info.Locations = append(info.Locations, loc)
		}
		for _, t := range splitList(f.cell(row, start+i+n)) {
			v, err := ParseTime(t)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", day, err)
			}
			info.Times = append(info.Times, v)
		}
		days = append(days, info)
	}
	return days, nil
}

func (f *FormReader) cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Uniqname is the part of an email address before the @
func Uniqname(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return strings.TrimSpace(name)
}

// ReadDuesPayers reads a CSV with a "Uniqname" header column
func ReadDuesPayers(r io.Reader) (map[string]bool, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read dues header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "Uniqname") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, errors.New("read dues: missing Uniqname column")
	}

	payers := make(map[string]bool)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dues: %w", err)
		}
		if col < len(row) {
			if name := strings.TrimSpace(row[col]); name != "" {
				payers[name] = true
			}
		}
	}
	return payers, nil
}
