package database

import (
	"context"
	"log"

	"cargotrack-backend/internal/models"
)

// watchSnapshots runs one live query: it delivers a full result
// snapshot immediately, then a fresh one after every change to the
// table. Snapshots are never diffed and delivery is at-least-once; a
// slow consumer sees coalesced events, never stale partial results.
// The channel closes when ctx is cancelled.
func watchSnapshots[T any](ctx context.Context, s *Store, table string, query func(context.Context) ([]T, error)) <-chan []T {
	out := make(chan []T, 1)
	events, cancel := s.notifier.Subscribe(table)

	go func() {
		defer close(out)
		defer cancel()

		for {
			snapshot, err := query(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("⚠️  Live query on %s failed: %v", table, err)
			} else {
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-events:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// WatchAllTrips streams snapshots of every trip, newest first.
func (s *Store) WatchAllTrips(ctx context.Context) <-chan []models.Trip {
	return watchSnapshots(ctx, s, tripsTable, s.GetAllTrips)
}

// WatchTripsByStatus streams snapshots of trips in one status.
func (s *Store) WatchTripsByStatus(ctx context.Context, status models.TripStatus) <-chan []models.Trip {
	return watchSnapshots(ctx, s, tripsTable, func(ctx context.Context) ([]models.Trip, error) {
		return s.GetTripsByStatus(ctx, status)
	})
}

// WatchTripsByDriver streams snapshots of one driver's trips.
func (s *Store) WatchTripsByDriver(ctx context.Context, driverID string) <-chan []models.Trip {
	return watchSnapshots(ctx, s, tripsTable, func(ctx context.Context) ([]models.Trip, error) {
		return s.GetTripsByDriver(ctx, driverID)
	})
}

// WatchTripsBySupervisor streams snapshots of one supervisor's trips.
func (s *Store) WatchTripsBySupervisor(ctx context.Context, supervisorID string) <-chan []models.Trip {
	return watchSnapshots(ctx, s, tripsTable, func(ctx context.Context) ([]models.Trip, error) {
		return s.GetTripsBySupervisor(ctx, supervisorID)
	})
}

// WatchAllUsers streams snapshots of every user.
func (s *Store) WatchAllUsers(ctx context.Context) <-chan []models.User {
	return watchSnapshots(ctx, s, usersTable, s.GetAllUsers)
}

// WatchUsersByType streams snapshots of users of one type.
func (s *Store) WatchUsersByType(ctx context.Context, userType models.UserType) <-chan []models.User {
	return watchSnapshots(ctx, s, usersTable, func(ctx context.Context) ([]models.User, error) {
		return s.GetUsersByType(ctx, userType)
	})
}

// WatchTripLocations streams snapshots of a trip's fixes, newest first.
func (s *Store) WatchTripLocations(ctx context.Context, tripID string) <-chan []models.LocationFix {
	return watchSnapshots(ctx, s, locationsTable, func(ctx context.Context) ([]models.LocationFix, error) {
		return s.GetTripLocationsDesc(ctx, tripID)
	})
}
