package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"cargotrack-backend/internal/models"
	"cargotrack-backend/internal/repository"
	"cargotrack-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CreateUserRequest struct {
	AccessCode string  `json:"access_code"`
	UserType   string  `json:"user_type"`
	Name       *string `json:"name"`
}

type SetUserActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// GetUsers lists users, optionally filtered by type.
func GetUsers(userRepo *repository.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			users []models.User
			err   error
		)

		if typeParam := r.URL.Query().Get("type"); typeParam != "" {
			userType, ok := models.ParseUserType(typeParam)
			if !ok {
				utils.RespondError(w, http.StatusBadRequest, "Unknown user type")
				return
			}
			users, err = userRepo.GetUsersByType(r.Context(), userType)
		} else {
			users, err = userRepo.GetAllUsers(r.Context())
		}

		if err != nil {
			log.Printf("❌ Failed to list users: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list users")
			return
		}

		responses := make([]models.UserResponse, 0, len(users))
		for i := range users {
			responses = append(responses, users[i].ToUserResponse())
		}
		utils.Success(w, responses)
	}
}

// GetUser returns one user by id.
func GetUser(userRepo *repository.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := userRepo.GetUserByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to get user")
			return
		}
		if user == nil {
			utils.RespondError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.Success(w, user.ToUserResponse())
	}
}

// CreateUser provisions an account. Managers only.
func CreateUser(userRepo *repository.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.AccessCode == "" {
			utils.RespondError(w, http.StatusBadRequest, "Access code is required")
			return
		}
		userType, ok := models.ParseUserType(req.UserType)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "User type must be DRIVER, SUPERVISOR or MANAGER")
			return
		}

		// An access code must resolve to at most one active user.
		existing, err := userRepo.GetUserByAccessCode(r.Context(), req.AccessCode)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to check access code")
			return
		}
		if existing != nil {
			utils.RespondError(w, http.StatusConflict, "Access code already in use")
			return
		}

		user := models.User{
			ID:         uuid.New().String(),
			AccessCode: req.AccessCode,
			UserType:   userType,
			Name:       req.Name,
			IsActive:   true,
			CreatedAt:  time.Now().UnixMilli(),
		}

		if err := userRepo.InsertUser(r.Context(), user); err != nil {
			log.Printf("❌ Failed to create user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		log.Printf("✅ User created: %s (%s)", user.ID, user.UserType)
		utils.RespondJSON(w, http.StatusCreated, user.ToUserResponse())
	}
}

// SetUserActive toggles the authentication gate for a user.
func SetUserActive(userRepo *repository.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "id")

		var req SetUserActiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := userRepo.SetUserActive(r.Context(), userID, req.IsActive); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update user")
			return
		}
		utils.Success(w, map[string]bool{"ok": true})
	}
}

// DeleteUser removes an account. Kept for administrative use; no
// client flow calls it.
func DeleteUser(userRepo *repository.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := userRepo.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete user")
			return
		}
		utils.Success(w, map[string]bool{"ok": true})
	}
}

// GetUserCounts reports active-user counts per type.
func GetUserCounts(userRepo *repository.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types := []models.UserType{
			models.UserTypeDriver, models.UserTypeSupervisor, models.UserTypeManager,
		}

		counts := make(map[string]int, len(types))
		for _, userType := range types {
			n, err := userRepo.CountActiveUsersByType(r.Context(), userType)
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Failed to count users")
				return
			}
			counts[string(userType)] = n
		}
		utils.Success(w, counts)
	}
}
