// Command main runs the database seeder for Vaultroom.
package main

import (
	"flag"
	"log"

	"vaultroom/internal/config"
	"vaultroom/internal/database"
	"vaultroom/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numRooms := flag.Int("rooms", 10, "Number of data rooms to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumRooms:    *numRooms,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
