package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cargotrack-backend/internal/models"
)

// sessionFile is the durable key-value namespace for the session.
const sessionFile = "cargo_session.json"

// sessionData mirrors the stored keys one-to-one.
type sessionData struct {
	IsLoggedIn bool    `json:"is_logged_in"`
	UserID     string  `json:"user_id"`
	AccessCode string  `json:"access_code"`
	UserType   string  `json:"user_type"`
	UserName   *string `json:"user_name"`
	LastLogin  int64   `json:"last_login"`
}

// Manager holds the device's authentication state in a durable file so
// it survives process restarts until an explicit logout. It is an
// explicit handle: components that need identity receive a *Manager,
// there is no package-level session.
//
// The snapshot is deliberately independent of the user table. If the
// backing user row is later deleted or deactivated the session stays
// valid until logout; only a fresh login path re-validates.
type Manager struct {
	mu   sync.Mutex
	path string
}

// NewManager stores session state under the given directory.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}
	return &Manager{path: filepath.Join(dir, sessionFile)}, nil
}

// SaveUserSession records the authenticated user, overwriting any prior
// session unconditionally. Last login is stamped with the current time.
func (m *Manager) SaveUserSession(user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data := sessionData{
		IsLoggedIn: true,
		UserID:     user.ID,
		AccessCode: user.AccessCode,
		UserType:   string(user.UserType),
		UserName:   user.Name,
		LastLogin:  time.Now().UnixMilli(),
	}
	return m.write(data)
}

// IsLoggedIn reports whether a session is recorded.
func (m *Manager) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.read()
	return ok && data.IsLoggedIn
}

// CurrentUser reconstructs the authenticated user from the stored
// fields. Any decode failure - missing required field, unknown user
// type - is treated as "no session"; nothing is propagated and the
// stored keys are left in place.
func (m *Manager) CurrentUser() (*models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.read()
	if !ok || !data.IsLoggedIn {
		return nil, false
	}
	if data.UserID == "" || data.AccessCode == "" {
		return nil, false
	}
	userType, ok := models.ParseUserType(data.UserType)
	if !ok {
		return nil, false
	}

	lastLogin := data.LastLogin
	return &models.User{
		ID:         data.UserID,
		AccessCode: data.AccessCode,
		UserType:   userType,
		Name:       data.UserName,
		LastLogin:  &lastLogin,
		IsActive:   true,
	}, true
}

// UserType returns the stored user type, if decodable.
func (m *Manager) UserType() (models.UserType, bool) {
	user, ok := m.CurrentUser()
	if !ok {
		return "", false
	}
	return user.UserType, true
}

// Clear erases the whole session namespace atomically.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// write persists the session with a temp-file rename so a crash can
// never leave a half-written session behind.
func (m *Manager) write(data sessionData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

func (m *Manager) read() (sessionData, bool) {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		return sessionData{}, false
	}
	var data sessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return sessionData{}, false
	}
	return data, true
}
