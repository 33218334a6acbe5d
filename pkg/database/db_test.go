package database

import (
	"testing"

	"github.com/arnavshah/carpool-scheduler-api/pkg/config"
	"github.com/arnavshah/carpool-scheduler-api/pkg/models"
)

func TestScheduleRunRoundTrip(t *testing.T) {
	db, err := InitDB(config.Config{DataPath: "file::memory:?cache=shared"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	driver := &models.Driver{
		Member: models.Member{Name: "Bob", Days: []models.DayInfo{{Day: models.Monday, Times: []float64{18}, Locations: []models.Location{models.North}}}},
		Seats:  2,
	}
	rider := &models.Rider{Member: models.Member{Name: "Jon"}}
	schedule := models.Schedule{
		{Day: models.Monday, Cars: []models.Car{{Driver: driver, Riders: []*models.Rider{rider}}}},
		{Day: models.Friday, Cars: []models.Car{}, Unmatched: []models.Unmatched{{Rider: "Amy", Day: models.Friday, Reason: "no drivers for this day"}}},
	}

	run, err := NewScheduleRun(7, 2, 1, schedule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Days != "MONDAY,FRIDAY" || run.RidersPlaced != 1 || run.RidersUnmatched != 1 {
		t.Errorf("unexpected run summary: %+v", run)
	}
	if len(run.ID) != 36 {
		t.Errorf("expected uuid id, got %q", run.ID)
	}

	if err := db.Create(run).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var loaded ScheduleRun
	if err := db.First(&loaded, "id = ?", run.ID).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := loaded.Schedule()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].Day != models.Friday {
		t.Fatalf("unexpected schedule: %+v", got)
	}
	if got[0].Cars[0].Driver.Name != "Bob" || got[0].Cars[0].Riders[0].Name != "Jon" {
		t.Errorf("unexpected first car: %+v", got[0].Cars[0])
	}
	if got[1].Unmatched[0].Rider != "Amy" {
		t.Errorf("unexpected unmatched: %+v", got[1].Unmatched)
	}
}
