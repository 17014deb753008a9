package repository

import (
	"context"
	"time"

	"cargotrack-backend/internal/database"
	"cargotrack-backend/internal/models"
)

// UserRepository is a thin façade over the store's user operations.
// AuthenticateUser is the one place it adds behavior.
type UserRepository struct {
	store *database.Store
}

func NewUserRepository(store *database.Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return r.store.GetAllUsers(ctx)
}

func (r *UserRepository) GetUsersByType(ctx context.Context, userType models.UserType) ([]models.User, error) {
	return r.store.GetUsersByType(ctx, userType)
}

func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return r.store.GetUserByID(ctx, userID)
}

func (r *UserRepository) GetUserByAccessCode(ctx context.Context, accessCode string) (*models.User, error) {
	return r.store.GetUserByAccessCode(ctx, accessCode)
}

func (r *UserRepository) InsertUser(ctx context.Context, user models.User) error {
	return r.store.InsertUser(ctx, user)
}

func (r *UserRepository) UpdateUser(ctx context.Context, user models.User) error {
	return r.store.UpdateUser(ctx, user)
}

func (r *UserRepository) DeleteUser(ctx context.Context, userID string) error {
	return r.store.DeleteUser(ctx, userID)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string, lastLogin int64) error {
	return r.store.UpdateLastLogin(ctx, userID, lastLogin)
}

func (r *UserRepository) SetUserActive(ctx context.Context, userID string, isActive bool) error {
	return r.store.SetUserActive(ctx, userID, isActive)
}

func (r *UserRepository) CountActiveUsersByType(ctx context.Context, userType models.UserType) (int, error) {
	return r.store.CountActiveUsersByType(ctx, userType)
}

func (r *UserRepository) WatchAllUsers(ctx context.Context) <-chan []models.User {
	return r.store.WatchAllUsers(ctx)
}

func (r *UserRepository) WatchUsersByType(ctx context.Context, userType models.UserType) <-chan []models.User {
	return r.store.WatchUsersByType(ctx, userType)
}

// AuthenticateUser resolves an access code to its active user and, on a
// hit, stamps last_login before returning. The returned user carries
// the stamp that was just written. A miss (unknown code or inactive
// user) returns nil with no side effects.
func (r *UserRepository) AuthenticateUser(ctx context.Context, accessCode string) (*models.User, error) {
	user, err := r.store.GetUserByAccessCode(ctx, accessCode)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	lastLogin := time.Now().UnixMilli()
	if err := r.store.UpdateLastLogin(ctx, user.ID, lastLogin); err != nil {
		return nil, err
	}
	user.LastLogin = &lastLogin
	return user, nil
}
