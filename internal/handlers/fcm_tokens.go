package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"cargotrack-backend/internal/database"
	"cargotrack-backend/internal/middleware"
	"cargotrack-backend/pkg/utils"
)

type RegisterFCMTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"` // "ios" or "android"
}

// RegisterFCMToken stores a device's push token for the authenticated user.
func RegisterFCMToken(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req RegisterFCMTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Token == "" {
			utils.RespondError(w, http.StatusBadRequest, "Token is required")
			return
		}
		if req.DeviceType != "ios" && req.DeviceType != "android" {
			utils.RespondError(w, http.StatusBadRequest, "Device type must be 'ios' or 'android'")
			return
		}

		if err := store.UpsertFCMToken(r.Context(), claims.UserID, req.Token, req.DeviceType); err != nil {
			log.Printf("❌ Failed to register FCM token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register token")
			return
		}
		utils.Success(w, map[string]bool{"ok": true})
	}
}
