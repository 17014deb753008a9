package database

import (
	"context"
	"testing"
	"time"

	"cargotrack-backend/internal/models"
)

func recvSnapshot[T any](t *testing.T, ch <-chan []T) []T {
	t.Helper()
	select {
	case snapshot, ok := <-ch:
		if !ok {
			t.Fatal("watch channel closed unexpectedly")
		}
		return snapshot
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}

func TestWatchAllTripsDeliversInitialSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.InsertTrip(context.Background(), testTrip("T1")); err != nil {
		t.Fatalf("InsertTrip failed: %v", err)
	}

	trips := recvSnapshot(t, store.WatchAllTrips(ctx))
	if len(trips) != 1 || trips[0].ID != "T1" {
		t.Errorf("initial snapshot should contain T1, got %+v", trips)
	}
}

func TestWatchSeesWrites(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := store.WatchTripsByStatus(ctx, models.TripStatusPending)
	if got := recvSnapshot(t, ch); len(got) != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", got)
	}

	if err := store.InsertTrip(context.Background(), testTrip("T1")); err != nil {
		t.Fatalf("InsertTrip failed: %v", err)
	}

	// Delivery is at-least-once: keep draining until the write shows up.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case trips := <-ch:
			if len(trips) == 1 && trips[0].ID == "T1" {
				return
			}
		case <-deadline:
			t.Fatal("watch never observed the inserted trip")
		}
	}
}

func TestWatchFilterExcludesOtherRows(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mine := testTrip("mine")
	other := testTrip("other")
	other.DriverID = "someone-else"
	for _, trip := range []models.Trip{mine, other} {
		if err := store.InsertTrip(context.Background(), trip); err != nil {
			t.Fatalf("InsertTrip failed: %v", err)
		}
	}

	trips := recvSnapshot(t, store.WatchTripsByDriver(ctx, SeedDriverID))
	if len(trips) != 1 || trips[0].ID != "mine" {
		t.Errorf("driver watch leaked other rows: %+v", trips)
	}
}

func TestWatchChannelClosesOnCancel(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch := store.WatchAllUsers(ctx)
	recvSnapshot(t, ch)
	cancel()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel did not close after cancel")
		}
	}
}

func TestNotifierCoalescesAndScopes(t *testing.T) {
	n := NewNotifier()
	tripEvents, cancelTrips := n.Subscribe(tripsTable)
	defer cancelTrips()
	userEvents, cancelUsers := n.Subscribe(usersTable)
	defer cancelUsers()

	// Multiple publishes while undrained collapse to one pending event.
	n.Publish(tripsTable)
	n.Publish(tripsTable)
	n.Publish(tripsTable)

	select {
	case <-tripEvents:
	default:
		t.Fatal("expected a pending trip event")
	}
	select {
	case <-tripEvents:
		t.Fatal("events must coalesce while undrained")
	default:
	}

	// Events never cross tables.
	select {
	case <-userEvents:
		t.Fatal("user subscriber must not see trip events")
	default:
	}

	// Cancelled subscribers stop receiving.
	cancelUsers()
	n.Publish(usersTable)
	select {
	case <-userEvents:
		t.Fatal("cancelled subscriber received an event")
	default:
	}
}
