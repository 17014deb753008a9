package handlers

import (
	"net/http"
	"strconv"

	"cargotrack-backend/internal/repository"
	"cargotrack-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// GetTripLocations returns a trip's breadcrumbs in capture order.
func GetTripLocations(tripRepo *repository.TripRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fixes, err := tripRepo.GetTripLocations(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list locations")
			return
		}
		utils.Success(w, fixes)
	}
}

// GetLatestTripLocation returns the most recent fix for a trip.
func GetLatestTripLocation(tripRepo *repository.TripRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fix, err := tripRepo.GetLatestLocation(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to get latest location")
			return
		}
		if fix == nil {
			utils.RespondError(w, http.StatusNotFound, "No locations recorded for this trip")
			return
		}
		utils.Success(w, fix)
	}
}

// GetTripLocationCount returns how many fixes a trip has recorded.
func GetTripLocationCount(tripRepo *repository.TripRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := tripRepo.CountLocationsByTrip(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to count locations")
			return
		}
		utils.Success(w, map[string]int{"count": count})
	}
}

// DeleteTripLocations purges every breadcrumb recorded for a trip.
func DeleteTripLocations(tripRepo *repository.TripRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tripRepo.DeleteLocationsByTrip(r.Context(), chi.URLParam(r, "id")); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete locations")
			return
		}
		utils.Success(w, map[string]bool{"ok": true})
	}
}

// PurgeOldLocations removes every fix captured before the given cutoff
// (Unix millis). Fixes at exactly the cutoff survive.
func PurgeOldLocations(tripRepo *repository.TripRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cutoff, err := strconv.ParseInt(r.URL.Query().Get("before"), 10, 64)
		if err != nil || cutoff <= 0 {
			utils.RespondError(w, http.StatusBadRequest, "Query parameter 'before' must be a Unix millisecond timestamp")
			return
		}

		if err := tripRepo.DeleteLocationsBefore(r.Context(), cutoff); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to purge locations")
			return
		}
		utils.Success(w, map[string]bool{"ok": true})
	}
}
