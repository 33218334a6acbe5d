package main

import (
	"log"
	"os"

	"github.com/arnavshah/carpool-scheduler-api/pkg/auth"
	"github.com/arnavshah/carpool-scheduler-api/pkg/config"
	"github.com/arnavshah/carpool-scheduler-api/pkg/database"
	"github.com/arnavshah/carpool-scheduler-api/pkg/handlers"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Printf("could not create admin user: %v", err)
	}

	h := handlers.NewHandler(db, cfg)

	r := gin.Default()
	h.Register(r)

	log.Printf("Server starting on port %s days=%v dues_only=%t", cfg.Port, cfg.Days, cfg.DuesOnly)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
