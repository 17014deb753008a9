package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"cargotrack-backend/internal/repository"
	"cargotrack-backend/internal/tracking"
	"cargotrack-backend/pkg/utils"
)

type StartTrackingRequest struct {
	TripID            string `json:"trip_id"`
	PermissionGranted bool   `json:"permission_granted"`
}

type PushSampleRequest struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
	Speed     *float64 `json:"speed"`
	Bearing   *float64 `json:"bearing"`
	Timestamp *int64   `json:"timestamp"` // Unix millis; server time when absent
}

// StartTracking arms the capture loop with a trip. The device reports
// its location permission with the request; without it the loop
// refuses to start.
func StartTracking(tracker *tracking.Tracker, provider *tracking.PushProvider, tripRepo *repository.TripRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartTrackingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.TripID == "" {
			utils.RespondError(w, http.StatusBadRequest, "Trip id is required")
			return
		}

		trip, err := tripRepo.GetTripByID(r.Context(), req.TripID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to get trip")
			return
		}
		if trip == nil {
			utils.RespondError(w, http.StatusNotFound, "Trip not found")
			return
		}

		provider.SetPermission(req.PermissionGranted)

		if err := tracker.Start(req.TripID); err != nil {
			switch {
			case errors.Is(err, tracking.ErrPermissionDenied):
				utils.RespondError(w, http.StatusForbidden, "Location permission not granted")
			case errors.Is(err, tracking.ErrAlreadyTracking):
				utils.RespondError(w, http.StatusConflict, "Tracking already active")
			default:
				log.Printf("❌ Failed to start tracking: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "Failed to start tracking")
			}
			return
		}

		utils.Success(w, map[string]string{"tracking": req.TripID})
	}
}

// StopTracking releases the position subscription.
func StopTracking(tracker *tracking.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracker.Stop()
		utils.Success(w, map[string]bool{"ok": true})
	}
}

// GetTrackingStatus reports the bound trip, if any.
func GetTrackingStatus(tracker *tracking.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, active := tracker.ActiveTrip()
		utils.Success(w, map[string]interface{}{
			"active":  active,
			"trip_id": tripID,
		})
	}
}

// PushSample accepts one device sensor reading. Samples arriving while
// no tracking is active, or faster than the configured bound, are
// acknowledged but dropped.
func PushSample(provider *tracking.PushProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PushSampleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		sample := tracking.Sample{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Accuracy:  req.Accuracy,
			Speed:     req.Speed,
			Bearing:   req.Bearing,
		}
		if req.Timestamp != nil {
			sample.Time = time.UnixMilli(*req.Timestamp)
		}

		accepted := provider.Push(sample)
		utils.Success(w, map[string]bool{"accepted": accepted})
	}
}
