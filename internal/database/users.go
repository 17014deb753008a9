package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cargotrack-backend/internal/models"
)

const usersTable = "users"

// GetAllUsers returns every user, newest first.
func (s *Store) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users,
		`SELECT * FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUsersByType returns users of one type, newest first.
func (s *Store) GetUsersByType(ctx context.Context, userType models.UserType) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users,
		`SELECT * FROM users WHERE user_type = ? ORDER BY created_at DESC`, userType)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by type: %w", err)
	}
	return users, nil
}

// GetUserByID returns the user with the given id, or nil if absent.
func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return &user, nil
}

// GetUserByAccessCode returns the active user holding the given access
// code, or nil. Inactive users never match.
func (s *Store) GetUserByAccessCode(ctx context.Context, accessCode string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE access_code = ? AND is_active = 1`, accessCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by access code: %w", err)
	}
	return &user, nil
}

// InsertUser writes a user with upsert semantics: an existing row with
// the same id is fully replaced, never merged.
func (s *Store) InsertUser(ctx context.Context, user models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO users (id, access_code, user_type, name, last_login, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.AccessCode, user.UserType, models.ToNullString(user.Name),
		models.ToNullInt64(user.LastLogin), user.IsActive, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user %s: %w", user.ID, err)
	}
	s.notifier.Publish(usersTable)
	return nil
}

// UpdateUser replaces the row matching the user's id. A missing row is
// a silent no-op; callers do not pre-check existence.
func (s *Store) UpdateUser(ctx context.Context, user models.User) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET access_code = ?, user_type = ?, name = ?, last_login = ?, is_active = ?
		WHERE id = ?`,
		user.AccessCode, user.UserType, models.ToNullString(user.Name),
		models.ToNullInt64(user.LastLogin), user.IsActive, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	s.notifier.Publish(usersTable)
	return nil
}

// DeleteUser removes a user by id.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	s.notifier.Publish(usersTable)
	return nil
}

// UpdateLastLogin stamps a user's last login time.
func (s *Store) UpdateLastLogin(ctx context.Context, userID string, lastLogin int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`, lastLogin, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login for %s: %w", userID, err)
	}
	s.notifier.Publish(usersTable)
	return nil
}

// SetUserActive toggles the authentication gate for a user.
func (s *Store) SetUserActive(ctx context.Context, userID string, isActive bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_active = ? WHERE id = ?`, isActive, userID)
	if err != nil {
		return fmt.Errorf("failed to set active for %s: %w", userID, err)
	}
	s.notifier.Publish(usersTable)
	return nil
}

// CountActiveUsersByType counts active users of one type.
func (s *Store) CountActiveUsersByType(ctx context.Context, userType models.UserType) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM users WHERE user_type = ? AND is_active = 1`, userType)
	if err != nil {
		return 0, fmt.Errorf("failed to count users by type: %w", err)
	}
	return count, nil
}
