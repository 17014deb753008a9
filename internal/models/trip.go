package models

import (
	"database/sql"
)

// TripStatus represents the lifecycle state of a trip
type TripStatus string

const (
	TripStatusPending    TripStatus = "PENDING"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

// ParseTripStatus maps a stored string back to a TripStatus.
func ParseTripStatus(s string) (TripStatus, bool) {
	switch TripStatus(s) {
	case TripStatusPending, TripStatusInProgress, TripStatusCompleted, TripStatusCancelled:
		return TripStatus(s), true
	}
	return "", false
}

// validTransitions encodes the trip lifecycle:
// PENDING -> IN_PROGRESS -> COMPLETED, with CANCELLED reachable from
// any pre-terminal state.
var validTransitions = map[TripStatus][]TripStatus{
	TripStatusPending:    {TripStatusInProgress, TripStatusCancelled},
	TripStatusInProgress: {TripStatusCompleted, TripStatusCancelled},
	TripStatusCompleted:  {},
	TripStatusCancelled:  {},
}

// CanTransition reports whether a trip may move from one status to another.
func CanTransition(from, to TripStatus) bool {
	for _, allowed := range validTransitions[from] {
		if to == allowed {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing transitions.
func (s TripStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Trip is a cargo shipment record
type Trip struct {
	ID            string     `json:"id" db:"id"`
	Origin        string     `json:"origin" db:"origin"`
	Destination   string     `json:"destination" db:"destination"`
	CargoType     string     `json:"cargo_type" db:"cargo_type"`
	CargoWeight   float64    `json:"cargo_weight" db:"cargo_weight"`
	DriverName    string     `json:"driver_name" db:"driver_name"`
	VehicleNumber string     `json:"vehicle_number" db:"vehicle_number"`
	DepartureTime int64      `json:"departure_time" db:"departure_time"`
	ArrivalTime   *int64     `json:"arrival_time" db:"arrival_time"` // Set once concluded
	Status        TripStatus `json:"status" db:"status"`
	DriverID      string     `json:"driver_id" db:"driver_id"`
	SupervisorID  *string    `json:"supervisor_id" db:"supervisor_id"`
	CreatedAt     int64      `json:"created_at" db:"created_at"`
	UpdatedAt     int64      `json:"updated_at" db:"updated_at"` // Refreshed on every mutation
	QRCode        *string    `json:"qr_code" db:"qr_code"`       // Unique opaque lookup token
	Notes         *string    `json:"notes" db:"notes"`
}

// ToNullInt64 converts a pointer to int64 to sql.NullInt64
func ToNullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

// FromNullInt64 converts sql.NullInt64 to pointer to int64
func FromNullInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}

// ToNullString converts a pointer to string to sql.NullString
func ToNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

// FromNullString converts sql.NullString to pointer to string
func FromNullString(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return &n.String
}
