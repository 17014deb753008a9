package models

// LocationFix represents one GPS sample captured for a trip
type LocationFix struct {
	ID        string   `json:"id" db:"id"`
	TripID    string   `json:"trip_id" db:"trip_id"`
	Latitude  float64  `json:"latitude" db:"latitude"`
	Longitude float64  `json:"longitude" db:"longitude"`
	Accuracy  float64  `json:"accuracy" db:"accuracy"`           // GPS accuracy in meters
	Speed     *float64 `json:"speed,omitempty" db:"speed"`       // m/s, nil when the sensor reading had none
	Bearing   *float64 `json:"bearing,omitempty" db:"bearing"`   // Degrees 0-360, nil when unavailable
	Timestamp int64    `json:"timestamp" db:"timestamp"`         // Capture time, Unix millis
	Address   *string  `json:"address,omitempty" db:"address"`   // Reverse-geocoded label, if any
}
