package database

import (
	"context"
	"fmt"

	"cargotrack-backend/internal/models"
)

// UpsertFCMToken registers a device token for push delivery. A token
// already registered (possibly by another user on a shared device) is
// reassigned.
func (s *Store) UpsertFCMToken(ctx context.Context, userID, token, deviceType string) error {
	now := nowMillis()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fcm_tokens (user_id, token, device_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET user_id = excluded.user_id,
			device_type = excluded.device_type, updated_at = excluded.updated_at`,
		userID, token, deviceType, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert fcm token: %w", err)
	}
	return nil
}

// GetFCMTokensForUser returns the device tokens registered for a user.
func (s *Store) GetFCMTokensForUser(ctx context.Context, userID string) ([]models.FCMToken, error) {
	tokens := []models.FCMToken{}
	err := s.db.SelectContext(ctx, &tokens,
		`SELECT * FROM fcm_tokens WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fcm tokens for %s: %w", userID, err)
	}
	return tokens, nil
}

// DeleteFCMToken drops a token, typically after FCM reports it stale.
func (s *Store) DeleteFCMToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM fcm_tokens WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to delete fcm token: %w", err)
	}
	return nil
}
