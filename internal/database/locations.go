package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cargotrack-backend/internal/models"
)

const locationsTable = "location_tracking"

// GetTripLocations returns a trip's fixes in capture order (oldest first).
func (s *Store) GetTripLocations(ctx context.Context, tripID string) ([]models.LocationFix, error) {
	fixes := []models.LocationFix{}
	err := s.db.SelectContext(ctx, &fixes,
		`SELECT * FROM location_tracking WHERE trip_id = ? ORDER BY timestamp ASC`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations for trip %s: %w", tripID, err)
	}
	return fixes, nil
}

// GetTripLocationsDesc returns a trip's fixes newest first, the order
// the live map feed consumes them in.
func (s *Store) GetTripLocationsDesc(ctx context.Context, tripID string) ([]models.LocationFix, error) {
	fixes := []models.LocationFix{}
	err := s.db.SelectContext(ctx, &fixes,
		`SELECT * FROM location_tracking WHERE trip_id = ? ORDER BY timestamp DESC`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations for trip %s: %w", tripID, err)
	}
	return fixes, nil
}

// GetLocationByID returns one fix by id, or nil if absent.
func (s *Store) GetLocationByID(ctx context.Context, locationID string) (*models.LocationFix, error) {
	var fix models.LocationFix
	err := s.db.GetContext(ctx, &fix,
		`SELECT * FROM location_tracking WHERE id = ?`, locationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location %s: %w", locationID, err)
	}
	return &fix, nil
}

// GetLatestLocation returns the most recent fix for a trip, or nil.
func (s *Store) GetLatestLocation(ctx context.Context, tripID string) (*models.LocationFix, error) {
	var fix models.LocationFix
	err := s.db.GetContext(ctx, &fix,
		`SELECT * FROM location_tracking WHERE trip_id = ? ORDER BY timestamp DESC LIMIT 1`, tripID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest location for trip %s: %w", tripID, err)
	}
	return &fix, nil
}

// InsertLocation writes one fix with upsert semantics.
func (s *Store) InsertLocation(ctx context.Context, fix models.LocationFix) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO location_tracking
			(id, trip_id, latitude, longitude, accuracy, speed, bearing, timestamp, address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fix.ID, fix.TripID, fix.Latitude, fix.Longitude, fix.Accuracy,
		fix.Speed, fix.Bearing, fix.Timestamp, models.ToNullString(fix.Address))
	if err != nil {
		return fmt.Errorf("failed to insert location %s: %w", fix.ID, err)
	}
	s.notifier.Publish(locationsTable)
	return nil
}

// InsertLocations writes a batch of fixes in one transaction. Either
// the whole batch lands or none of it does.
func (s *Store) InsertLocations(ctx context.Context, fixes []models.LocationFix) error {
	if len(fixes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin location batch: %w", err)
	}
	for _, fix := range fixes {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO location_tracking
				(id, trip_id, latitude, longitude, accuracy, speed, bearing, timestamp, address)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fix.ID, fix.TripID, fix.Latitude, fix.Longitude, fix.Accuracy,
			fix.Speed, fix.Bearing, fix.Timestamp, models.ToNullString(fix.Address))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert location %s in batch: %w", fix.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit location batch: %w", err)
	}
	s.notifier.Publish(locationsTable)
	return nil
}

// DeleteLocation removes one fix by id.
func (s *Store) DeleteLocation(ctx context.Context, locationID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM location_tracking WHERE id = ?`, locationID)
	if err != nil {
		return fmt.Errorf("failed to delete location %s: %w", locationID, err)
	}
	s.notifier.Publish(locationsTable)
	return nil
}

// DeleteLocationsByTrip purges every fix recorded for a trip.
func (s *Store) DeleteLocationsByTrip(ctx context.Context, tripID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM location_tracking WHERE trip_id = ?`, tripID)
	if err != nil {
		return fmt.Errorf("failed to delete locations for trip %s: %w", tripID, err)
	}
	s.notifier.Publish(locationsTable)
	return nil
}

// DeleteLocationsBefore purges fixes captured strictly before the
// cutoff. Fixes at exactly the cutoff are kept.
func (s *Store) DeleteLocationsBefore(ctx context.Context, cutoff int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM location_tracking WHERE timestamp < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete locations before %d: %w", cutoff, err)
	}
	s.notifier.Publish(locationsTable)
	return nil
}

// CountLocationsByTrip counts the fixes recorded for a trip.
func (s *Store) CountLocationsByTrip(ctx context.Context, tripID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM location_tracking WHERE trip_id = ?`, tripID)
	if err != nil {
		return 0, fmt.Errorf("failed to count locations for trip %s: %w", tripID, err)
	}
	return count, nil
}
