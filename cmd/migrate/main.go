package main

import (
	"context"
	"log"
	"os"

	"cargotrack-backend/internal/database"

	"github.com/joho/godotenv"
)

// Standalone migration runner. The server runs migrations on startup as
// well; this exists for provisioning a database ahead of deployment.
func main() {
	log.Println("🔧 CargoTrack database migration")

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	}

	dbPath := os.Getenv("CARGOTRACK_DB_PATH")
	if dbPath == "" {
		dbPath = "./cargotrack.db"
	}

	store, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("❌ Database open failed: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		log.Fatalf("❌ Migrations failed: %v", err)
	}
	log.Println("✅ Migrations applied")

	if err := store.SeedDefaultUsers(context.Background()); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✅ Database ready at %s", dbPath)
}
