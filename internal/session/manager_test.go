package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cargotrack-backend/internal/models"
)

func testUser() models.User {
	name := "Default Driver"
	return models.User{
		ID:         "DR001",
		AccessCode: "DR001",
		UserType:   models.UserTypeDriver,
		Name:       &name,
		IsActive:   true,
		CreatedAt:  time.Now().UnixMilli(),
	}
}

func TestSaveAndCurrentUser(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if mgr.IsLoggedIn() {
		t.Fatal("fresh manager must not report a session")
	}
	if _, ok := mgr.CurrentUser(); ok {
		t.Fatal("fresh manager must not yield a user")
	}

	user := testUser()
	before := time.Now().UnixMilli()
	if err := mgr.SaveUserSession(user); err != nil {
		t.Fatalf("SaveUserSession failed: %v", err)
	}

	if !mgr.IsLoggedIn() {
		t.Error("saved session must report logged in")
	}
	got, ok := mgr.CurrentUser()
	if !ok {
		t.Fatal("CurrentUser must succeed after save")
	}
	if got.ID != user.ID || got.AccessCode != user.AccessCode || got.UserType != user.UserType {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Name == nil || *got.Name != *user.Name {
		t.Errorf("name lost in round trip: %v", got.Name)
	}
	if got.LastLogin == nil || *got.LastLogin < before {
		t.Errorf("save must stamp last login, got %v", got.LastLogin)
	}

	userType, ok := mgr.UserType()
	if !ok || userType != models.UserTypeDriver {
		t.Errorf("UserType = %v, %v; want DRIVER, true", userType, ok)
	}
}

func TestSessionSurvivesNewManager(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if err := mgr.SaveUserSession(testUser()); err != nil {
		t.Fatalf("SaveUserSession failed: %v", err)
	}

	// Same directory, new handle: the session is durable state, not
	// process state.
	again, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager reopen failed: %v", err)
	}
	if !again.IsLoggedIn() {
		t.Error("session must survive a restart")
	}
	got, ok := again.CurrentUser()
	if !ok || got.ID != "DR001" {
		t.Errorf("CurrentUser after restart = %+v, %v", got, ok)
	}
}

func TestClearErasesSession(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if err := mgr.SaveUserSession(testUser()); err != nil {
		t.Fatalf("SaveUserSession failed: %v", err)
	}

	if err := mgr.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if mgr.IsLoggedIn() {
		t.Error("cleared session must not report logged in")
	}
	if _, ok := mgr.CurrentUser(); ok {
		t.Error("cleared session must not yield a user")
	}

	// Clearing an already-clear session is fine.
	if err := mgr.Clear(); err != nil {
		t.Errorf("double Clear must not error: %v", err)
	}
}

func TestCorruptUserTypeYieldsNoSession(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	// Stored keys with a user type outside the closed set. Decode fails
	// soft: no session, no error, keys left in place.
	raw, _ := json.Marshal(sessionData{
		IsLoggedIn: true,
		UserID:     "DR001",
		AccessCode: "DR001",
		UserType:   "ASTRONAUT",
		LastLogin:  12345,
	})
	path := filepath.Join(dir, sessionFile)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, ok := mgr.CurrentUser(); ok {
		t.Error("unknown user type must not decode to a session")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("decode failure must leave the stored keys in place: %v", err)
	}
	// IsLoggedIn only checks the flag, which is intact.
	if !mgr.IsLoggedIn() {
		t.Error("is_logged_in flag should still read true")
	}
}
