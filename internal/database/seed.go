package database

import (
	"context"
	"log"

	"cargotrack-backend/internal/models"
)

// Default accounts installed into a brand-new store. Access code doubles
// as the id for both.
const (
	SeedDriverID     = "DR001"
	SeedSupervisorID = "SP001"
)

// SeedDefaultUsers installs the two default accounts. It only acts on a
// store Open just created; reopening an existing database is always a
// no-op, regardless of what rows it contains.
func (s *Store) SeedDefaultUsers(ctx context.Context) error {
	if !s.fresh {
		log.Println("✓ Existing database, skipping default user seed")
		return nil
	}

	driverName := "Default Driver"
	supervisorName := "Default Supervisor"
	now := nowMillis()

	seeds := []models.User{
		{
			ID:         SeedDriverID,
			AccessCode: SeedDriverID,
			UserType:   models.UserTypeDriver,
			Name:       &driverName,
			IsActive:   true,
			CreatedAt:  now,
		},
		{
			ID:         SeedSupervisorID,
			AccessCode: SeedSupervisorID,
			UserType:   models.UserTypeSupervisor,
			Name:       &supervisorName,
			IsActive:   true,
			CreatedAt:  now,
		},
	}

	for _, user := range seeds {
		if err := s.InsertUser(ctx, user); err != nil {
			return err
		}
	}

	log.Printf("🌱 Seeded default users: %s (driver), %s (supervisor)", SeedDriverID, SeedSupervisorID)
	return nil
}
