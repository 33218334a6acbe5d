package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/arnavshah/carpool-scheduler-api/pkg/models"
	"github.com/joho/godotenv"
)

// Columns is the layout of the sign-up form responses sheet (zero based).
// Per-day columns start at DaysInfoStart: rider locations for each enabled
// day, then rider times, then driver locations, then driver times.
type Columns struct {
	Name          int
	Email         int
	Phone         int
	CarType       int
	Seats         int
	IsRider       int
	IsDriver      int
	DaysInfoStart int
}

// DefaultColumns matches the v2 carpool sign-up form
var DefaultColumns = Columns{
	Name:          1,
	Email:         2,
	Phone:         3,
	CarType:       4,
	Seats:         5,
	IsRider:       6,
	IsDriver:      7,
	DaysInfoStart: 8,
}

// Config holds everything the server and CLI need, resolved once at startup
type Config struct {
	Port            string
	DatabaseURL     string
	DataPath        string
	JWTSecret       string
	APIMasterSecret string
	AdminUsername   string
	AdminPassword   string
	Days            []models.Day
	DuesOnly        bool
	Seed            int64
	Columns         Columns
}

// LoadEnvFiles loads the first .env found in the working directory or its parents
func LoadEnvFiles() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	LoadEnvFiles()

	cfg := Config{
		Port:            envOrDefault("PORT", "8000"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DataPath:        envOrDefault("DATA_PATH", "carpool.db"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		APIMasterSecret: os.Getenv("API_MASTER_SECRET"),
		AdminUsername:   envOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:   envOrDefault("ADMIN_PASSWORD", "admin123"),
		DuesOnly:        envOrDefaultBool("CARPOOL_DUES_ONLY", true),
		Seed:            envOrDefaultInt64("CARPOOL_SEED", 0),
		Columns: Columns{
			Name:          envOrDefaultInt("CARPOOL_COL_NAME", DefaultColumns.Name),
			Email:         envOrDefaultInt("CARPOOL_COL_EMAIL", DefaultColumns.Email),
			Phone:         envOrDefaultInt("CARPOOL_COL_PHONE", DefaultColumns.Phone),
			CarType:       envOrDefaultInt("CARPOOL_COL_CAR_TYPE", DefaultColumns.CarType),
			Seats:         envOrDefaultInt("CARPOOL_COL_SEATS", DefaultColumns.Seats),
			IsRider:       envOrDefaultInt("CARPOOL_COL_IS_RIDER", DefaultColumns.IsRider),
			IsDriver:      envOrDefaultInt("CARPOOL_COL_IS_DRIVER", DefaultColumns.IsDriver),
			DaysInfoStart: envOrDefaultInt("CARPOOL_COL_DAYS_START", DefaultColumns.DaysInfoStart),
		},
	}

	days, err := ParseDayList(envOrDefault("CARPOOL_DAYS", "MONDAY,TUESDAY,WEDNESDAY,THURSDAY"))
	if err != nil {
		return Config{}, fmt.Errorf("load config: CARPOOL_DAYS: %w", err)
	}
	cfg.Days = days

	return cfg, nil
}

// ParseDayList parses a comma separated list of day names
func ParseDayList(s string) ([]models.Day, error) {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			names = append(names, p)
		}
	}
	return models.ParseDays(names)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
