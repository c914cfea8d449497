package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/BioMart/BioMart-Backend/src/db"
	"github.com/BioMart/BioMart-Backend/src/middleware"
	"github.com/BioMart/BioMart-Backend/src/models"
	"github.com/BioMart/BioMart-Backend/src/routes"
	"github.com/BioMart/BioMart-Backend/src/seed"
	"github.com/BioMart/BioMart-Backend/src/services"
	"github.com/gin-gonic/gin"
)

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {

	// Mart database connection
	martDB, err := db.Connect()
	if err != nil {
		log.Fatalf("Error connecting to database: %v\n", err)
	}

	// Auto-migrate mart models
	if err := martDB.AutoMigrate(&models.BiometricScoreModel{}, &models.UserModel{}); err != nil {
		log.Fatalf("Error during auto-migration: %v\n", err)
	}

	// Ingest state database (local sqlite)
	stateDB, err := db.ConnectState()
	if err != nil {
		log.Fatalf("Error opening state database: %v\n", err)
	}
	if err := stateDB.AutoMigrate(&models.ProcessedFileModel{}, &models.PersistedBatchModel{}); err != nil {
		log.Fatalf("Error during state auto-migration: %v\n", err)
	}

	// JWT secret
	middleware.SetSecretKey(getenv("JWT_SECRET_KEY", "biomart-dev-secret"))

	// Default user
	seed.Seed(martDB)

	// Services setup
	scoreService := services.NewScoreService(martDB)
	stateService := services.NewStateService(stateDB)
	userService := services.NewUserService(martDB)

	ingestService := services.NewIngestService(scoreService, stateService, services.IngestConfig{
		InputDir:       getenv("INPUT_DIR", "inputs"),
		OutputJSONDir:  getenv("OUTPUT_JSON_DIR", "outputs/json"),
		ArchiveDir:     getenv("ARCHIVE_DIR", "archive/logs"),
		ArchiveJSONDir: getenv("ARCHIVE_JSON_DIR", "archive/json"),
	})

	// SFTP collector, only when servers are configured
	var collectService *services.CollectService
	servers, err := services.LoadSSHServers(os.Getenv("SSH_SERVERS_FILE"), os.Getenv("SSH_SERVERS"))
	if err != nil {
		log.Fatalf("Error loading SSH server configuration: %v\n", err)
	}
	if len(servers) > 0 {
		collectService = services.NewCollectService(servers, os.Getenv("SSH_USER"), os.Getenv("SSH_PASSWORD"), getenv("INPUT_DIR", "inputs"))
	}

	// Periodic ingestion
	if intervalStr := os.Getenv("INGEST_INTERVAL_MINUTES"); intervalStr != "" {
		minutes, err := strconv.Atoi(intervalStr)
		if err != nil || minutes <= 0 {
			log.Fatalf("Invalid INGEST_INTERVAL_MINUTES: %q\n", intervalStr)
		}
		ingestService.StartScheduler(time.Duration(minutes)*time.Minute, collectService)
		log.Printf("Ingest scheduler running every %d minute(s)\n", minutes)
	}

	// Port and host setup
	host := getenv("SERVER_HOST", ":8080")

	// Gin router setup
	router := gin.Default()
	router.Use(middleware.SetupCORS())

	// Routes setup
	routes.SetupUserRoutes(router, userService)
	routes.SetupScoreRoutes(router, scoreService)
	routes.SetupIngestRoutes(router, ingestService, stateService, collectService)

	router.GET("/", func(c *gin.Context) {
		c.String(200, "BioMart backend is up")
	})

	// Server run
	if err := router.Run(host); err != nil {
		log.Fatalf("Error starting server on %s: %v\n", host, err)
	}
}
