package models

// UserType classifies an account. Persisted as the symbolic name string.
type UserType string

const (
	UserTypeDriver     UserType = "DRIVER"
	UserTypeSupervisor UserType = "SUPERVISOR"
	UserTypeManager    UserType = "MANAGER"
)

// ParseUserType maps a stored string back to a UserType.
// Returns false for anything outside the closed set.
func ParseUserType(s string) (UserType, bool) {
	switch UserType(s) {
	case UserTypeDriver, UserTypeSupervisor, UserTypeManager:
		return UserType(s), true
	}
	return "", false
}

// User is an account identified by its access code.
type User struct {
	ID         string   `json:"id" db:"id"`
	AccessCode string   `json:"-" db:"access_code"` // Sole credential - never returned in JSON
	UserType   UserType `json:"user_type" db:"user_type"`
	Name       *string  `json:"name" db:"name"`
	LastLogin  *int64   `json:"last_login" db:"last_login"` // Unix millis, nil until first login
	IsActive   bool     `json:"is_active" db:"is_active"`
	CreatedAt  int64    `json:"created_at" db:"created_at"` // Unix millis
}

type UserResponse struct {
	ID        string   `json:"id"`
	UserType  UserType `json:"user_type"`
	Name      *string  `json:"name,omitempty"`
	LastLogin *int64   `json:"last_login,omitempty"`
	IsActive  bool     `json:"is_active"`
	CreatedAt int64    `json:"created_at"`
}

func (u *User) ToUserResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		UserType:  u.UserType,
		Name:      u.Name,
		LastLogin: u.LastLogin,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// FCMToken represents a Firebase Cloud Messaging token registered by a device
type FCMToken struct {
	ID         int    `json:"id" db:"id"`
	UserID     string `json:"user_id" db:"user_id"`
	Token      string `json:"token" db:"token"`
	DeviceType string `json:"device_type" db:"device_type"` // "ios" or "android"
	CreatedAt  int64  `json:"created_at" db:"created_at"`
	UpdatedAt  int64  `json:"updated_at" db:"updated_at"`
}
