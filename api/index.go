package handler

import (
	"log"
	"net/http"

	"github.com/arnavshah/carpool-scheduler-api/pkg/auth"
	"github.com/arnavshah/carpool-scheduler-api/pkg/config"
	"github.com/arnavshah/carpool-scheduler-api/pkg/database"
	"github.com/arnavshah/carpool-scheduler-api/pkg/handlers"
	"github.com/gin-gonic/gin"
)

var r *gin.Engine

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	_ = auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword)

	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	handlers.NewHandler(db, cfg).Register(r)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
