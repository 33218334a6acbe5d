package loader

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/arnavshah/carpool-scheduler-api/pkg/config"
	"github.com/arnavshah/carpool-scheduler-api/pkg/models"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"7:30 PM", 19.5},
		{"7:30 pm", 19.5},
		{"12:00 PM", 12},
		{"12:15 AM", 0.25},
		{"9:45 AM", 9.75},
		{"18:00", 18},
	}
	for _, c := range cases {
		got, err := ParseTime(c.in)
		if err != nil {
			t.Errorf("ParseTime(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseTime(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	for _, bad := range []string{"", "7 PM", "13:00 PM", "7:75 PM", "7:30 XM", "25:00"} {
		if _, err := ParseTime(bad); !errors.Is(err, ErrBadTime) {
			t.Errorf("ParseTime(%q): expected ErrBadTime, got %v", bad, err)
		}
	}
}

func TestReadJSON(t *testing.T) {
	roster := `[
		{"name": "Roberts", "email": "rob@umich.edu", "is_driver": true, "car_type": "red toyota", "seats": 3,
		 "days": [{"day": "TUESDAY", "times": ["7:30 PM"], "locations": ["NORTH"]}]},
		{"name": "Suzy", "email": "suzy@umich.edu", "is_dues_paying": true,
		 "days": [{"day": "tuesday", "times": [19, 19.5], "locations": ["NORTH", "CENTRAL"]}]}
	]`

	riders, drivers, err := ReadJSON(strings.NewReader(roster))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(riders) != 1 || len(drivers) != 1 {
		t.Fatalf("got %d riders and %d drivers, want 1 and 1", len(riders), len(drivers))
	}

	d := drivers[0]
	if d.Name != "Roberts" || d.Seats != 3 || d.CarType != "red toyota" {
		t.Errorf("unexpected driver: %+v", d)
	}
	if got := d.Times(models.Tuesday); !reflect.DeepEqual(got, []float64{19.5}) {
		t.Errorf("driver times = %v", got)
	}

	r := riders[0]
	if !r.IsDuesPaying {
		t.Errorf("expected rider to be dues paying")
	}
	if got := r.Locations(models.Tuesday); !reflect.DeepEqual(got, []models.Location{models.North, models.Central}) {
		t.Errorf("rider locations = %v", got)
	}
}

func TestReadJSON_BadLocation(t *testing.T) {
	roster := `[{"name": "x", "days": [{"day": "MONDAY", "times": [18], "locations": ["SOUTH"]}]}]`
	if _, _, err := ReadJSON(strings.NewReader(roster)); !errors.Is(err, models.ErrUnknownLocation) {
		t.Fatalf("expected ErrUnknownLocation, got %v", err)
	}
}

func TestFormReader_Read(t *testing.T) {
	cols := config.Columns{Name: 1, Email: 2, Phone: 3, CarType: 4, Seats: 5, IsRider: 6, IsDriver: 7, DaysInfoStart: 8}
	days := []models.Day{models.Monday, models.Tuesday}

	// rider locs (mon, tue), rider times (mon, tue), driver locs (mon, tue), driver times (mon, tue)
	csvData := "ts,name,email,phone,car,seats,rider,driver,rl1,rl2,rt1,rt2,dl1,dl2,dt1,dt2\n" +
		`x,Jon,jon@umich.edu,555,,,Yes,No,"North Campus (Pierpont Commons), Central Campus (The Cube)",,"6:00 PM, 7:00 PM",,,,,` + "\n" +
		`x,Bob,bob@umich.edu,556,blue honda,4,No,Yes,,,,,,Central Campus (The Cube),,7:30 PM` + "\n"

	payers := map[string]bool{"jon": true}
	riders, drivers, err := NewFormReader(cols, days, payers).Read(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(riders) != 1 || len(drivers) != 1 {
		t.Fatalf("got %d riders and %d drivers, want 1 and 1", len(riders), len(drivers))
	}

	jon := riders[0]
	if !jon.IsDuesPaying {
		t.Errorf("expected Jon to be dues paying")
	}
	if jon.RidesOn(models.Tuesday) {
		t.Errorf("Jon should not ride tuesday")
	}
	if got := jon.Times(models.Monday); !reflect.DeepEqual(got, []float64{18, 19}) {
		t.Errorf("Jon monday times = %v", got)
	}
	if got := jon.Locations(models.Monday); !reflect.DeepEqual(got, []models.Location{models.North, models.Central}) {
		t.Errorf("Jon monday locations = %v", got)
	}

	bob := drivers[0]
	if bob.Seats != 4 || bob.CarType != "blue honda" || bob.IsDuesPaying {
		t.Errorf("unexpected driver: %+v", bob)
	}
	if bob.RidesOn(models.Monday) {
		t.Errorf("Bob should not drive monday")
	}
	if got := bob.Times(models.Tuesday); !reflect.DeepEqual(got, []float64{19.5}) {
		t.Errorf("Bob tuesday times = %v", got)
	}
}

func TestReadDuesPayers(t *testing.T) {
	payers, err := ReadDuesPayers(strings.NewReader("Name,Uniqname\nJon,jon\nAmy, amy \n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payers["jon"] || !payers["amy"] || len(payers) != 2 {
		t.Errorf("unexpected payers: %v", payers)
	}

	if _, err := ReadDuesPayers(strings.NewReader("Name\nJon\n")); err == nil {
		t.Errorf("expected error for missing Uniqname column")
	}
}

func TestValidate(t *testing.T) {
	v := NewValidator(nil)

	ok := []models.Driver{{
		Member: models.Member{Name: "d", Days: []models.DayInfo{{Day: models.Monday, Times: []float64{18}}}},
		Seats:  2,
	}}
	if err := v.Validate([]models.Rider{{Member: models.Member{Name: "r"}}}, ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []models.Driver{
		{Member: models.Member{Name: "d", Days: []models.DayInfo{{Day: models.Monday, Times: []float64{18, 19}}}}, Seats: -1},
		{Member: models.Member{Name: "d"}},
	}
	err := v.Validate([]models.Rider{{Member: models.Member{}}}, bad)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{"rider 0", "driver 0", "duplicate driver: d", "2 departure times"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestReadJSONFile(t *testing.T) {
	riders, drivers, err := ReadJSONFile("testdata/members.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(riders) != 3 || len(drivers) != 2 {
		t.Fatalf("got %d riders and %d drivers, want 3 and 2", len(riders), len(drivers))
	}
	if err := NewValidator(nil).Validate(riders, drivers); err != nil {
		t.Errorf("sample roster should be valid: %v", err)
	}

	if _, _, err := ReadJSONFile("testdata/missing.json"); err == nil {
		t.Errorf("expected error for missing file")
	}
}
