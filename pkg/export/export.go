// Package export renders a schedule for people to read.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/arnavshah/carpool-scheduler-api/pkg/models"
)

// CSVHeader is the first row written by WriteCSV
var CSVHeader = []string{"day", "driver", "car_type", "departure", "locations", "rider", "rider_email", "rider_phone"}

// FormatTime converts decimal hours to a 12-hour clock string: 19.5 -> "07:30 PM"
func FormatTime(hours float64) string {
	total := int(math.Round(hours * 60))
	h, m := (total/60)%24, total%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%02d:%02d %s", h12, m, suffix)
}

func departure(d *models.Driver, day models.Day) string {
	times := d.Times(day)
	if len(times) == 0 {
		return ""
	}
	return FormatTime(times[0])
}

func locations(m *models.Member, day models.Day) string {
	names := make([]string, 0, 2)
	for _, l := range m.Locations(day) {
		names = append(names, l.String())
	}
	return strings.Join(names, " ")
}

// WriteCSV writes one row per assigned rider
func WriteCSV(w io.Writer, schedule models.Schedule) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	for _, ds := range schedule {
		for _, car := range ds.Cars {
			for _, r := range car.Riders {
				err := writer.Write([]string{
					ds.Day.String(),
					car.Driver.Name,
					car.Driver.CarType,
					departure(car.Driver, ds.Day),
					locations(&car.Driver.Member, ds.Day),
					r.Name,
					r.Email,
					r.Phone,
				})
				if err != nil {
					return fmt.Errorf("write csv: %w", err)
				}
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// Summary prints the schedule day by day, one block per car
func Summary(w io.Writer, schedule models.Schedule) error {
	var b strings.Builder
	b.WriteString("Summary of rides generated:\n")
	for _, ds := range schedule {
		fmt.Fprintf(&b, "Rides for:\t%s\n", ds.Day)
		for _, car := range ds.Cars {
			fmt.Fprintf(&b, "Driver:\t%s (%s, %s)\n", car.Driver.Name, departure(car.Driver, ds.Day), locations(&car.Driver.Member, ds.Day))
			for _, r := range car.Riders {
				fmt.Fprintf(&b, "Rider:\t%s\n", r.Name)
			}
			b.WriteString("\n")
		}
		for _, u := range ds.Unmatched {
			fmt.Fprintf(&b, "Unmatched:\t%s (%s)\n", u.Rider, u.Reason)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
