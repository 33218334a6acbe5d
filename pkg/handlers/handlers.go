package handlers

import (
	"embed"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/arnavshah/carpool-scheduler-api/pkg/auth"
	"github.com/arnavshah/carpool-scheduler-api/pkg/config"
	"github.com/arnavshah/carpool-scheduler-api/pkg/database"
	"github.com/arnavshah/carpool-scheduler-api/pkg/export"
	"github.com/arnavshah/carpool-scheduler-api/pkg/loader"
	"github.com/arnavshah/carpool-scheduler-api/pkg/models"
	"github.com/arnavshah/carpool-scheduler-api/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed static/*
var staticEmbed embed.FS

// Handler contains dependencies for the route handlers
type Handler struct {
	DB        *gorm.DB
	Auth      *auth.Auth
	Config    config.Config
	Validator *loader.Validator
}

// NewHandler wires the handler dependencies from the configuration
func NewHandler(db *gorm.DB, cfg config.Config) *Handler {
	return &Handler{
		DB:        db,
		Auth:      auth.New(cfg),
		Config:    cfg,
		Validator: loader.NewValidator(nil),
	}
}

func bearer(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the API key for scheduler routes using HMAC
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}

		userID, err := h.Auth.VerifyHMACKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			return
		}

		apiKey, err := auth.TouchAPIKey(h.DB, key, userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not load API key"})
			return
		}

		c.Set("apiKey", apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// runRequest carries one scheduling request through runSchedule
type runRequest struct {
	riders   []models.Rider
	drivers  []models.Driver
	days     []models.Day
	duesOnly bool
	seed     int64
}

// runSchedule validates the roster, allocates every day, records usage and
// stores the run. The returned status is meaningful only when err != nil.
func (h *Handler) runSchedule(c *gin.Context, req runRequest) (models.ScheduleResponse, int, error) {
	if err := h.Validator.Validate(req.riders, req.drivers); err != nil {
		return models.ScheduleResponse{}, http.StatusUnprocessableEntity, err
	}

	days := req.days
	if len(days) == 0 {
		days = h.Config.Days
	}

	opts := []scheduler.Option{scheduler.WithLogger(log.Default())}
	if req.seed != 0 {
		opts = append(opts, scheduler.WithSeed(req.seed))
	}
	s := scheduler.NewScheduler(opts...)

	riders := scheduler.Refs(req.riders)
	if req.duesOnly {
		riders = scheduler.FilterDuesPayers(riders)
	}
	drivers := scheduler.Refs(req.drivers)

	schedule, err := s.GenerateSchedule(riders, drivers, days)
	if err != nil {
		if errors.Is(err, scheduler.ErrMalformedDriverTimes) {
			return models.ScheduleResponse{}, http.StatusUnprocessableEntity, err
		}
		return models.ScheduleResponse{}, http.StatusInternalServerError, err
	}

	h.RecordUsage(c, len(riders), len(drivers))

	var keyID uint
	if apiKey, ok := c.Get("apiKey"); ok {
		keyID = apiKey.(*database.APIKey).ID
	}
	run, err := database.NewScheduleRun(keyID, len(riders), len(drivers), schedule)
	if err != nil {
		return models.ScheduleResponse{}, http.StatusInternalServerError, err
	}
	if err := h.DB.Create(run).Error; err != nil {
		return models.ScheduleResponse{}, http.StatusInternalServerError, err
	}
	log.Printf("run_id=%s days=%s riders=%d drivers=%d placed=%d unmatched=%d",
		run.ID, run.Days, run.Riders, run.Drivers, run.RidersPlaced, run.RidersUnmatched)

	return models.ScheduleResponse{
		RunID:    run.ID,
		Schedule: schedule,
		Stats:    scheduler.CalculateStats(schedule, drivers),
	}, 0, nil
}

// ScheduleJSON handles the JSON-based scheduling request
func (h *Handler) ScheduleJSON(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	duesOnly := h.Config.DuesOnly
	if input.DuesOnly != nil {
		duesOnly = *input.DuesOnly
	}
	seed := input.Seed
	if seed == 0 {
		seed = h.Config.Seed
	}

	resp, status, err := h.runSchedule(c, runRequest{
		riders:   input.Riders,
		drivers:  input.Drivers,
		days:     input.Days,
		duesOnly: duesOnly,
		seed:     seed,
	})
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ScheduleCSV handles sign-up form exports uploaded as CSV files
func (h *Handler) ScheduleCSV(c *gin.Context) {
	responsesFile, _ := c.FormFile("responses_file")
	duesFile, _ := c.FormFile("dues_file")

	if responsesFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "responses_file is required"})
		return
	}

	days := h.Config.Days
	if raw := c.PostForm("days"); raw != "" {
		parsed, err := config.ParseDayList(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		days = parsed
	}

	payers := map[string]bool{}
	duesOnly := h.Config.DuesOnly
	if duesFile != nil {
		dFile, err := duesFile.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open dues file"})
			return
		}
		defer dFile.Close()
		payers, err = loader.ReadDuesPayers(dFile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else {
		// without a dues list nobody could be scheduled
		duesOnly = false
	}

	rFile, err := responsesFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open responses file"})
		return
	}
	defer rFile.Close()

	riders, drivers, err := loader.NewFormReader(h.Config.Columns, days, payers).Read(rFile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, status, err := h.runSchedule(c, runRequest{
		riders:   riders,
		drivers:  drivers,
		days:     days,
		duesOnly: duesOnly,
		seed:     h.Config.Seed,
	})
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	var outCSV strings.Builder
	if err := export.WriteCSV(&outCSV, resp.Schedule); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id": resp.RunID,
		"csv":    outCSV.String(),
		"stats":  resp.Stats,
	})
}

// RecordUsage records API usage in the database using an efficient upsert
func (h *Handler) RecordUsage(c *gin.Context, riderCount, driverCount int) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	today := time.Now().Format("2006-01-02")

	// Use OnConflict for a single-query upsert (supported by both Postgres and SQLite)
	err := h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"total_riders":  gorm.Expr("total_riders + ?", riderCount),
			"total_drivers": gorm.Expr("total_drivers + ?", driverCount),
		}),
	}).Create(&database.APIUsage{
		KeyID:        apiKey.ID,
		Date:         today,
		RequestCount: 1,
		TotalRiders:  riderCount,
		TotalDrivers: driverCount,
	}).Error
	if err != nil {
		log.Printf("key_id=%d op=record_usage err=%v", apiKey.ID, err)
	}
}

// GetRun returns a stored schedule belonging to the calling API key
func (h *Handler) GetRun(c *gin.Context) {
	apiKey := c.MustGet("apiKey").(*database.APIKey)

	var run database.ScheduleRun
	if err := h.DB.Where("id = ? AND key_id = ?", c.Param("id"), apiKey.ID).First(&run).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	schedule, err := run.Schedule()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if c.Query("format") == "text" {
		var b strings.Builder
		if err := export.Summary(&b, schedule); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.String(http.StatusOK, b.String())
		return
	}

	c.JSON(http.StatusOK, gin.H{"run": run, "schedule": schedule})
}

// ListRuns returns the most recent runs across all keys
func (h *Handler) ListRuns(c *gin.Context) {
	var runs []database.ScheduleRun
	if err := h.DB.Order("created_at desc").Limit(50).Find(&runs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.MasterUser
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.Auth.CreateToken(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey creates a new API key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		RateLimit int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" || strings.Contains(req.Name, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required and may not contain '.'"})
		return
	}

	if req.RateLimit == 0 {
		req.RateLimit = 10000
	}

	key := h.Auth.GenerateHMACKey(req.Name)

	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: auth.Preview(key),
		RateLimit:  req.RateLimit,
	}

	if err := h.DB.Create(&apiKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	if err := h.DB.Find(&keys).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey deletes an API key
func (h *Handler) RevokeKey(c *gin.Context) {
	id := c.Param("id")
	if err := h.DB.Delete(&database.APIKey{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the rate limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	if err := h.DB.Model(&database.APIKey{}).Where("id = ?", id).Update("rate_limit", req.RateLimit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update key limit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id := c.Param("id")
	var usage []database.APIUsage
	h.DB.Where("key_id = ?", id).Order("date desc").Limit(30).Find(&usage)
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}

// AdminInterface serves the admin web interface from embedded files
func (h *Handler) AdminInterface(c *gin.Context) {
	data, err := staticEmbed.ReadFile("static/index.html")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "static/index.html not found in embedded FS"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// GetStaticFS returns the embedded filesystem for static assets
func (h *Handler) GetStaticFS() http.FileSystem {
	sub, err := fs.Sub(staticEmbed, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
