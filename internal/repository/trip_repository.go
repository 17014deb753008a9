package repository

import (
	"context"

	"cargotrack-backend/internal/database"
	"cargotrack-backend/internal/models"
)

// TripRepository is a thin façade over the store's trip and location
// operations. It restates each call without changing behavior.
type TripRepository struct {
	store *database.Store
}

func NewTripRepository(store *database.Store) *TripRepository {
	return &TripRepository{store: store}
}

func (r *TripRepository) GetAllTrips(ctx context.Context) ([]models.Trip, error) {
	return r.store.GetAllTrips(ctx)
}

func (r *TripRepository) GetTripsByStatus(ctx context.Context, status models.TripStatus) ([]models.Trip, error) {
	return r.store.GetTripsByStatus(ctx, status)
}

func (r *TripRepository) GetTripsByDriver(ctx context.Context, driverID string) ([]models.Trip, error) {
	return r.store.GetTripsByDriver(ctx, driverID)
}

func (r *TripRepository) GetTripsBySupervisor(ctx context.Context, supervisorID string) ([]models.Trip, error) {
	return r.store.GetTripsBySupervisor(ctx, supervisorID)
}

func (r *TripRepository) GetTripByID(ctx context.Context, tripID string) (*models.Trip, error) {
	return r.store.GetTripByID(ctx, tripID)
}

func (r *TripRepository) GetTripByQRCode(ctx context.Context, qrCode string) (*models.Trip, error) {
	return r.store.GetTripByQRCode(ctx, qrCode)
}

func (r *TripRepository) InsertTrip(ctx context.Context, trip models.Trip) error {
	return r.store.InsertTrip(ctx, trip)
}

func (r *TripRepository) UpdateTrip(ctx context.Context, trip models.Trip) error {
	return r.store.UpdateTrip(ctx, trip)
}

func (r *TripRepository) UpdateTripStatus(ctx context.Context, tripID string, status models.TripStatus) error {
	return r.store.UpdateTripStatus(ctx, tripID, status)
}

func (r *TripRepository) DeleteTrip(ctx context.Context, tripID string) error {
	return r.store.DeleteTrip(ctx, tripID)
}

func (r *TripRepository) CountTripsByStatus(ctx context.Context, status models.TripStatus) (int, error) {
	return r.store.CountTripsByStatus(ctx, status)
}

func (r *TripRepository) CountTripsByDriverAndStatus(ctx context.Context, driverID string, status models.TripStatus) (int, error) {
	return r.store.CountTripsByDriverAndStatus(ctx, driverID, status)
}

func (r *TripRepository) WatchAllTrips(ctx context.Context) <-chan []models.Trip {
	return r.store.WatchAllTrips(ctx)
}

func (r *TripRepository) WatchTripsByDriver(ctx context.Context, driverID string) <-chan []models.Trip {
	return r.store.WatchTripsByDriver(ctx, driverID)
}

func (r *TripRepository) GetTripLocations(ctx context.Context, tripID string) ([]models.LocationFix, error) {
	return r.store.GetTripLocations(ctx, tripID)
}

func (r *TripRepository) GetLatestLocation(ctx context.Context, tripID string) (*models.LocationFix, error) {
	return r.store.GetLatestLocation(ctx, tripID)
}

func (r *TripRepository) DeleteLocationsByTrip(ctx context.Context, tripID string) error {
	return r.store.DeleteLocationsByTrip(ctx, tripID)
}

func (r *TripRepository) DeleteLocationsBefore(ctx context.Context, cutoff int64) error {
	return r.store.DeleteLocationsBefore(ctx, cutoff)
}

func (r *TripRepository) CountLocationsByTrip(ctx context.Context, tripID string) (int, error) {
	return r.store.CountLocationsByTrip(ctx, tripID)
}
