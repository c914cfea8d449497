package db

import (
	"log"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection to the data mart using DB_DSN.
// Environment variables are loaded from a .env file when one is present.
func Connect() (*gorm.DB, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	dsn := os.Getenv("DB_DSN")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Println("Error connecting to the mart database:", err)
		return nil, err
	}

	log.Println("BioMart DB connected successfully!")

	return db, nil
}

// ConnectState opens the local sqlite database that tracks ingestion
// progress (processed log files, persisted batches). The mart stays in
// Postgres; this file only holds pipeline bookkeeping.
func ConnectState() (*gorm.DB, error) {
	path := os.Getenv("STATE_DB_PATH")
	if path == "" {
		path = "state/ingestor_state.db"
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Println("Error opening the state database:", err)
		return nil, err
	}

	return db, nil
}
