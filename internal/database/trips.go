package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cargotrack-backend/internal/models"
)

const tripsTable = "trips"

// GetAllTrips returns every trip, newest first.
func (s *Store) GetAllTrips(ctx context.Context) ([]models.Trip, error) {
	trips := []models.Trip{}
	err := s.db.SelectContext(ctx, &trips,
		`SELECT * FROM trips ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, nil
}

// GetTripsByStatus returns trips in one status, newest first.
func (s *Store) GetTripsByStatus(ctx context.Context, status models.TripStatus) ([]models.Trip, error) {
	trips := []models.Trip{}
	err := s.db.SelectContext(ctx, &trips,
		`SELECT * FROM trips WHERE status = ? ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips by status: %w", err)
	}
	return trips, nil
}

// GetTripsByDriver returns a driver's trips, newest first.
func (s *Store) GetTripsByDriver(ctx context.Context, driverID string) ([]models.Trip, error) {
	trips := []models.Trip{}
	err := s.db.SelectContext(ctx, &trips,
		`SELECT * FROM trips WHERE driver_id = ? ORDER BY created_at DESC`, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips by driver: %w", err)
	}
	return trips, nil
}

// GetTripsBySupervisor returns a supervisor's trips, newest first.
func (s *Store) GetTripsBySupervisor(ctx context.Context, supervisorID string) ([]models.Trip, error) {
	trips := []models.Trip{}
	err := s.db.SelectContext(ctx, &trips,
		`SELECT * FROM trips WHERE supervisor_id = ? ORDER BY created_at DESC`, supervisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips by supervisor: %w", err)
	}
	return trips, nil
}

// GetTripByID returns the trip with the given id, or nil if absent.
func (s *Store) GetTripByID(ctx context.Context, tripID string) (*models.Trip, error) {
	var trip models.Trip
	err := s.db.GetContext(ctx, &trip, `SELECT * FROM trips WHERE id = ?`, tripID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip %s: %w", tripID, err)
	}
	return &trip, nil
}

// GetTripByQRCode resolves a scanned QR token to its trip, or nil.
func (s *Store) GetTripByQRCode(ctx context.Context, qrCode string) (*models.Trip, error) {
	var trip models.Trip
	err := s.db.GetContext(ctx, &trip, `SELECT * FROM trips WHERE qr_code = ?`, qrCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip by qr code: %w", err)
	}
	return &trip, nil
}

// InsertTrip writes a trip with upsert semantics: an existing row with
// the same id is fully replaced, never merged.
func (s *Store) InsertTrip(ctx context.Context, trip models.Trip) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trips
			(id, origin, destination, cargo_type, cargo_weight, driver_name, vehicle_number,
			 departure_time, arrival_time, status, driver_id, supervisor_id,
			 created_at, updated_at, qr_code, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trip.ID, trip.Origin, trip.Destination, trip.CargoType, trip.CargoWeight,
		trip.DriverName, trip.VehicleNumber, trip.DepartureTime,
		models.ToNullInt64(trip.ArrivalTime), trip.Status, trip.DriverID,
		models.ToNullString(trip.SupervisorID), trip.CreatedAt, trip.UpdatedAt,
		models.ToNullString(trip.QRCode), models.ToNullString(trip.Notes))
	if err != nil {
		return fmt.Errorf("failed to insert trip %s: %w", trip.ID, err)
	}
	s.notifier.Publish(tripsTable)
	return nil
}

// UpdateTrip replaces the row matching the trip's id, refreshing
// updated_at and leaving created_at untouched. A missing row is a
// silent no-op.
func (s *Store) UpdateTrip(ctx context.Context, trip models.Trip) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE trips SET
			origin = ?, destination = ?, cargo_type = ?, cargo_weight = ?,
			driver_name = ?, vehicle_number = ?, departure_time = ?, arrival_time = ?,
			status = ?, driver_id = ?, supervisor_id = ?, updated_at = ?,
			qr_code = ?, notes = ?
		WHERE id = ?`,
		trip.Origin, trip.Destination, trip.CargoType, trip.CargoWeight,
		trip.DriverName, trip.VehicleNumber, trip.DepartureTime,
		models.ToNullInt64(trip.ArrivalTime), trip.Status, trip.DriverID,
		models.ToNullString(trip.SupervisorID), nowMillis(),
		models.ToNullString(trip.QRCode), models.ToNullString(trip.Notes),
		trip.ID)
	if err != nil {
		return fmt.Errorf("failed to update trip %s: %w", trip.ID, err)
	}
	s.notifier.Publish(tripsTable)
	return nil
}

// UpdateTripStatus records a status transition, refreshing updated_at.
func (s *Store) UpdateTripStatus(ctx context.Context, tripID string, status models.TripStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE trips SET status = ?, updated_at = ? WHERE id = ?`,
		status, nowMillis(), tripID)
	if err != nil {
		return fmt.Errorf("failed to update trip status for %s: %w", tripID, err)
	}
	s.notifier.Publish(tripsTable)
	return nil
}

// DeleteTrip removes a trip by id.
func (s *Store) DeleteTrip(ctx context.Context, tripID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, tripID)
	if err != nil {
		return fmt.Errorf("failed to delete trip %s: %w", tripID, err)
	}
	s.notifier.Publish(tripsTable)
	return nil
}

// CountTripsByStatus counts trips in one status.
func (s *Store) CountTripsByStatus(ctx context.Context, status models.TripStatus) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM trips WHERE status = ?`, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count trips by status: %w", err)
	}
	return count, nil
}

// CountTripsByDriverAndStatus counts one driver's trips in one status.
func (s *Store) CountTripsByDriverAndStatus(ctx context.Context, driverID string, status models.TripStatus) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM trips WHERE driver_id = ? AND status = ?`, driverID, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count trips by driver and status: %w", err)
	}
	return count, nil
}
