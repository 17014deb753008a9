package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to TripStatus
		want     bool
	}{
		{TripStatusPending, TripStatusInProgress, true},
		{TripStatusPending, TripStatusCancelled, true},
		{TripStatusPending, TripStatusCompleted, false},
		{TripStatusPending, TripStatusPending, false},
		{TripStatusInProgress, TripStatusCompleted, true},
		{TripStatusInProgress, TripStatusCancelled, true},
		{TripStatusInProgress, TripStatusPending, false},
		{TripStatusCompleted, TripStatusInProgress, false},
		{TripStatusCompleted, TripStatusCancelled, false},
		{TripStatusCancelled, TripStatusPending, false},
		{TripStatusCancelled, TripStatusInProgress, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, status := range []TripStatus{TripStatusPending, TripStatusInProgress} {
		if status.IsTerminal() {
			t.Errorf("%s must not be terminal", status)
		}
	}
	for _, status := range []TripStatus{TripStatusCompleted, TripStatusCancelled} {
		if !status.IsTerminal() {
			t.Errorf("%s must be terminal", status)
		}
	}
}

func TestParseTripStatus(t *testing.T) {
	if _, ok := ParseTripStatus("IN_PROGRESS"); !ok {
		t.Error("IN_PROGRESS should parse")
	}
	for _, bad := range []string{"", "in_progress", "DONE", "PENDING "} {
		if _, ok := ParseTripStatus(bad); ok {
			t.Errorf("%q must not parse as a trip status", bad)
		}
	}
}

func TestParseUserType(t *testing.T) {
	for _, good := range []string{"DRIVER", "SUPERVISOR", "MANAGER"} {
		if _, ok := ParseUserType(good); !ok {
			t.Errorf("%q should parse", good)
		}
	}
	for _, bad := range []string{"", "driver", "ADMIN"} {
		if _, ok := ParseUserType(bad); ok {
			t.Errorf("%q must not parse as a user type", bad)
		}
	}
}
