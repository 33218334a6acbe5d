package database

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arnavshah/carpool-scheduler-api/pkg/config"
	"github.com/arnavshah/carpool-scheduler-api/pkg/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"key"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	KeyID        uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date         string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount int    `gorm:"default:0" json:"request_count"`
	TotalRiders  int    `gorm:"default:0" json:"total_riders"`
	TotalDrivers int    `gorm:"default:0" json:"total_drivers"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// ScheduleRun represents the schedule_runs table: one generated schedule
type ScheduleRun struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	KeyID           uint      `gorm:"index" json:"key_id"`
	Days            string    `json:"days"`
	Riders          int       `json:"riders"`
	Drivers         int       `json:"drivers"`
	RidersPlaced    int       `json:"riders_placed"`
	RidersUnmatched int       `json:"riders_unmatched"`
	Result          string    `gorm:"type:text" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewScheduleRun captures a finished schedule for storage
func NewScheduleRun(keyID uint, riders, drivers int, schedule models.Schedule) (*ScheduleRun, error) {
	result, err := json.Marshal(schedule)
	if err != nil {
		return nil, fmt.Errorf("new schedule run: %w", err)
	}

	run := &ScheduleRun{
		ID:      uuid.NewString(),
		KeyID:   keyID,
		Riders:  riders,
		Drivers: drivers,
		Result:  string(result),
	}
	days := make([]string, 0, len(schedule))
	for _, ds := range schedule {
		days = append(days, ds.Day.String())
		run.RidersUnmatched += len(ds.Unmatched)
		for _, car := range ds.Cars {
			run.RidersPlaced += len(car.Riders)
		}
	}
	run.Days = strings.Join(days, ",")
	return run, nil
}

// Schedule decodes the stored result
func (r *ScheduleRun) Schedule() (models.Schedule, error) {
	var schedule models.Schedule
	if err := json.Unmarshal([]byte(r.Result), &schedule); err != nil {
		return nil, fmt.Errorf("decode schedule run %s: %w", r.ID, err)
	}
	return schedule, nil
}

// InitDB opens Postgres when a DATABASE_URL is configured, SQLite otherwise,
// and migrates the schema
func InitDB(cfg config.Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if cfg.DatabaseURL != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.DataPath), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates all tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &MasterUser{}, &ScheduleRun{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
