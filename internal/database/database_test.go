package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cargotrack-backend/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return store
}

func strPtr(s string) *string { return &s }
func int64Ptr(i int64) *int64 { return &i }

func testTrip(id string) models.Trip {
	now := time.Now().UnixMilli()
	return models.Trip{
		ID:            id,
		Origin:        "Warehouse A",
		Destination:   "Port Terminal 3",
		CargoType:     "Electronics",
		CargoWeight:   1200.5,
		DriverName:    "Default Driver",
		VehicleNumber: "TRK-042",
		DepartureTime: now,
		Status:        models.TripStatusPending,
		DriverID:      SeedDriverID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestSeedOnlyOnFreshStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cargotrack.db")
	ctx := context.Background()

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !store.IsFresh() {
		t.Fatal("expected a newly created database to report fresh")
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := store.SeedDefaultUsers(ctx); err != nil {
		t.Fatalf("SeedDefaultUsers failed: %v", err)
	}

	// Mutate a seeded account, then delete the other one entirely.
	driver, err := store.GetUserByID(ctx, SeedDriverID)
	if err != nil || driver == nil {
		t.Fatalf("seeded driver missing: user=%v err=%v", driver, err)
	}
	driver.Name = strPtr("Renamed Driver")
	if err := store.UpdateUser(ctx, *driver); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if err := store.DeleteUser(ctx, SeedSupervisorID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	store.Close()

	// Reopening must not re-seed: the rename survives and the deleted
	// supervisor stays gone even though the table no longer holds it.
	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()
	if store.IsFresh() {
		t.Fatal("reopened database must not report fresh")
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("Migrate on reopen failed: %v", err)
	}
	if err := store.SeedDefaultUsers(ctx); err != nil {
		t.Fatalf("SeedDefaultUsers on reopen failed: %v", err)
	}

	driver, err = store.GetUserByID(ctx, SeedDriverID)
	if err != nil || driver == nil {
		t.Fatalf("driver missing after reopen: user=%v err=%v", driver, err)
	}
	if driver.Name == nil || *driver.Name != "Renamed Driver" {
		t.Errorf("driver rename lost across reopen: got %v", driver.Name)
	}
	supervisor, err := store.GetUserByID(ctx, SeedSupervisorID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if supervisor != nil {
		t.Error("deleted supervisor came back after reopen")
	}
}

func TestSeedAccessCodeEqualsID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.SeedDefaultUsers(ctx); err != nil {
		t.Fatalf("SeedDefaultUsers failed: %v", err)
	}

	for _, id := range []string{SeedDriverID, SeedSupervisorID} {
		user, err := store.GetUserByAccessCode(ctx, id)
		if err != nil {
			t.Fatalf("GetUserByAccessCode(%s) failed: %v", id, err)
		}
		if user == nil || user.ID != id {
			t.Errorf("access code %s should resolve to user %s, got %+v", id, id, user)
		}
	}
}

func TestInsertUserReplacesExistingRow(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := models.User{
		ID:         "U1",
		AccessCode: "CODE-1",
		UserType:   models.UserTypeDriver,
		Name:       strPtr("First"),
		LastLogin:  int64Ptr(1000),
		IsActive:   true,
		CreatedAt:  500,
	}
	if err := store.InsertUser(ctx, first); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}

	// Same id, different everything, and no last login. The old row is
	// replaced wholesale, never merged.
	second := models.User{
		ID:         "U1",
		AccessCode: "CODE-2",
		UserType:   models.UserTypeManager,
		IsActive:   false,
		CreatedAt:  900,
	}
	if err := store.InsertUser(ctx, second); err != nil {
		t.Fatalf("InsertUser replace failed: %v", err)
	}

	got, err := store.GetUserByID(ctx, "U1")
	if err != nil || got == nil {
		t.Fatalf("GetUserByID failed: user=%v err=%v", got, err)
	}
	if got.AccessCode != "CODE-2" || got.UserType != models.UserTypeManager {
		t.Errorf("row not replaced: %+v", got)
	}
	if got.Name != nil || got.LastLogin != nil {
		t.Errorf("replace must not merge old fields: name=%v lastLogin=%v", got.Name, got.LastLogin)
	}
}

func TestGetUserByAccessCodeSkipsInactive(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := models.User{
		ID:         "U1",
		AccessCode: "CODE-1",
		UserType:   models.UserTypeDriver,
		IsActive:   true,
		CreatedAt:  nowMillis(),
	}
	if err := store.InsertUser(ctx, user); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}
	if err := store.SetUserActive(ctx, "U1", false); err != nil {
		t.Fatalf("SetUserActive failed: %v", err)
	}

	got, err := store.GetUserByAccessCode(ctx, "CODE-1")
	if err != nil {
		t.Fatalf("GetUserByAccessCode failed: %v", err)
	}
	if got != nil {
		t.Errorf("deactivated user must not resolve by access code, got %+v", got)
	}
	// Still reachable by id.
	byID, err := store.GetUserByID(ctx, "U1")
	if err != nil || byID == nil {
		t.Fatalf("deactivated user should still exist by id: user=%v err=%v", byID, err)
	}
}

func TestUpdateTripPreservesCreatedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	trip := testTrip("T1")
	trip.CreatedAt = 1000
	trip.UpdatedAt = 1000
	if err := store.InsertTrip(ctx, trip); err != nil {
		t.Fatalf("InsertTrip failed: %v", err)
	}

	trip.Destination = "Port Terminal 7"
	if err := store.UpdateTrip(ctx, trip); err != nil {
		t.Fatalf("UpdateTrip failed: %v", err)
	}

	got, err := store.GetTripByID(ctx, "T1")
	if err != nil || got == nil {
		t.Fatalf("GetTripByID failed: trip=%v err=%v", got, err)
	}
	if got.Destination != "Port Terminal 7" {
		t.Errorf("destination not updated: %s", got.Destination)
	}
	if got.CreatedAt != 1000 {
		t.Errorf("created_at must never change on update, got %d", got.CreatedAt)
	}
	if got.UpdatedAt <= 1000 {
		t.Errorf("updated_at must be refreshed on update, got %d", got.UpdatedAt)
	}
}

func TestUpdateMissingTripIsNoOp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.UpdateTrip(ctx, testTrip("ghost")); err != nil {
		t.Fatalf("updating a missing trip must not error: %v", err)
	}
	got, err := store.GetTripByID(ctx, "ghost")
	if err != nil {
		t.Fatalf("GetTripByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("no-op update must not create a row, got %+v", got)
	}
}

func TestGetTripByQRCode(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	trip := testTrip("T1")
	trip.QRCode = strPtr("qr-abc-123")
	if err := store.InsertTrip(ctx, trip); err != nil {
		t.Fatalf("InsertTrip failed: %v", err)
	}

	got, err := store.GetTripByQRCode(ctx, "qr-abc-123")
	if err != nil {
		t.Fatalf("GetTripByQRCode failed: %v", err)
	}
	if got == nil || got.ID != "T1" {
		t.Errorf("QR code should resolve to trip T1, got %+v", got)
	}

	miss, err := store.GetTripByQRCode(ctx, "qr-unknown")
	if err != nil {
		t.Fatalf("GetTripByQRCode miss errored: %v", err)
	}
	if miss != nil {
		t.Errorf("unknown QR code must return nil, got %+v", miss)
	}
}

func TestTripFiltersAndCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	supervisorID := "SP001"
	base := time.Now().UnixMilli()
	trips := []models.Trip{}
	for i, status := range []models.TripStatus{
		models.TripStatusPending,
		models.TripStatusPending,
		models.TripStatusInProgress,
		models.TripStatusCompleted,
	} {
		trip := testTrip(string(rune('A' + i)))
		trip.Status = status
		trip.CreatedAt = base + int64(i)
		if i == 3 {
			trip.DriverID = "OTHER"
		}
		trip.SupervisorID = &supervisorID
		trips = append(trips, trip)
	}
	for _, trip := range trips {
		if err := store.InsertTrip(ctx, trip); err != nil {
			t.Fatalf("InsertTrip failed: %v", err)
		}
	}

	pending, err := store.GetTripsByStatus(ctx, models.TripStatusPending)
	if err != nil {
		t.Fatalf("GetTripsByStatus failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("expected 2 pending trips, got %d", len(pending))
	}
	// Newest first.
	if len(pending) == 2 && pending[0].CreatedAt < pending[1].CreatedAt {
		t.Error("GetTripsByStatus must order newest first")
	}

	mine, err := store.GetTripsByDriver(ctx, SeedDriverID)
	if err != nil {
		t.Fatalf("GetTripsByDriver failed: %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("expected 3 trips for driver, got %d", len(mine))
	}

	supervised, err := store.GetTripsBySupervisor(ctx, supervisorID)
	if err != nil {
		t.Fatalf("GetTripsBySupervisor failed: %v", err)
	}
	if len(supervised) != 4 {
		t.Errorf("expected 4 supervised trips, got %d", len(supervised))
	}

	count, err := store.CountTripsByStatus(ctx, models.TripStatusPending)
	if err != nil || count != 2 {
		t.Errorf("CountTripsByStatus = %d, %v; want 2, nil", count, err)
	}
	count, err = store.CountTripsByDriverAndStatus(ctx, SeedDriverID, models.TripStatusCompleted)
	if err != nil || count != 0 {
		t.Errorf("CountTripsByDriverAndStatus = %d, %v; want 0, nil", count, err)
	}
}

func TestDeleteLocationsBeforeIsStrict(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i, ts := range []int64{100, 200, 300} {
		fix := models.LocationFix{
			ID:        string(rune('a' + i)),
			TripID:    "T1",
			Latitude:  14.5 + float64(i),
			Longitude: 121.0,
			Accuracy:  5.0,
			Timestamp: ts,
		}
		if err := store.InsertLocation(ctx, fix); err != nil {
			t.Fatalf("InsertLocation failed: %v", err)
		}
	}

	// Cutoff exactly at 200: the fix at 200 survives.
	if err := store.DeleteLocationsBefore(ctx, 200); err != nil {
		t.Fatalf("DeleteLocationsBefore failed: %v", err)
	}
	fixes, err := store.GetTripLocations(ctx, "T1")
	if err != nil {
		t.Fatalf("GetTripLocations failed: %v", err)
	}
	if len(fixes) != 2 {
		t.Fatalf("expected 2 fixes after purge, got %d", len(fixes))
	}
	if fixes[0].Timestamp != 200 || fixes[1].Timestamp != 300 {
		t.Errorf("wrong fixes survived: %d, %d", fixes[0].Timestamp, fixes[1].Timestamp)
	}
}

func TestLatestLocationAndOrdering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	speed := 8.5
	for i, ts := range []int64{300, 100, 200} {
		fix := models.LocationFix{
			ID:        string(rune('a' + i)),
			TripID:    "T1",
			Latitude:  14.5,
			Longitude: 121.0,
			Accuracy:  5.0,
			Speed:     &speed,
			Timestamp: ts,
		}
		if err := store.InsertLocation(ctx, fix); err != nil {
			t.Fatalf("InsertLocation failed: %v", err)
		}
	}

	latest, err := store.GetLatestLocation(ctx, "T1")
	if err != nil {
		t.Fatalf("GetLatestLocation failed: %v", err)
	}
	if latest == nil || latest.Timestamp != 300 {
		t.Errorf("latest fix should have timestamp 300, got %+v", latest)
	}
	if latest.Speed == nil || *latest.Speed != 8.5 {
		t.Errorf("speed lost in round trip: %v", latest.Speed)
	}

	asc, err := store.GetTripLocations(ctx, "T1")
	if err != nil {
		t.Fatalf("GetTripLocations failed: %v", err)
	}
	for i := 1; i < len(asc); i++ {
		if asc[i-1].Timestamp > asc[i].Timestamp {
			t.Fatal("GetTripLocations must order oldest first")
		}
	}

	none, err := store.GetLatestLocation(ctx, "no-such-trip")
	if err != nil {
		t.Fatalf("GetLatestLocation miss errored: %v", err)
	}
	if none != nil {
		t.Errorf("unknown trip must yield nil latest fix, got %+v", none)
	}
}

func TestInsertLocationsBatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	batch := []models.LocationFix{
		{ID: "a", TripID: "T1", Latitude: 1, Longitude: 2, Accuracy: 5, Timestamp: 100},
		{ID: "b", TripID: "T1", Latitude: 1, Longitude: 2, Accuracy: 5, Timestamp: 200},
	}
	if err := store.InsertLocations(ctx, batch); err != nil {
		t.Fatalf("InsertLocations failed: %v", err)
	}
	count, err := store.CountLocationsByTrip(ctx, "T1")
	if err != nil || count != 2 {
		t.Errorf("CountLocationsByTrip = %d, %v; want 2, nil", count, err)
	}

	if err := store.InsertLocations(ctx, nil); err != nil {
		t.Errorf("empty batch must be a no-op: %v", err)
	}
}

func TestUpsertFCMToken(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.UpsertFCMToken(ctx, "U1", "tok-1", "android"); err != nil {
		t.Fatalf("UpsertFCMToken failed: %v", err)
	}
	// Same token re-registered by another user moves ownership.
	if err := store.UpsertFCMToken(ctx, "U2", "tok-1", "android"); err != nil {
		t.Fatalf("UpsertFCMToken re-register failed: %v", err)
	}

	tokens, err := store.GetFCMTokensForUser(ctx, "U1")
	if err != nil {
		t.Fatalf("GetFCMTokensForUser failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("token should have moved off U1, got %v", tokens)
	}
	tokens, err = store.GetFCMTokensForUser(ctx, "U2")
	if err != nil {
		t.Fatalf("GetFCMTokensForUser failed: %v", err)
	}
	if len(tokens) != 1 {
		t.Errorf("expected 1 token for U2, got %v", tokens)
	}
}
