// Command migrate applies the database schema, including indexes that
// AutoMigrate alone cannot express.
package main

import (
	"log"

	"vaultroom/internal/config"
	"vaultroom/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Connect only migrates outside production; run it explicitly here so
	// production deploys have a deliberate migration step.
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration completed")
}
