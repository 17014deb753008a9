package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"cargotrack-backend/internal/database"
	"cargotrack-backend/internal/models"
	"cargotrack-backend/internal/repository"
	"cargotrack-backend/internal/services"
	"cargotrack-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CreateTripRequest struct {
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	CargoType     string   `json:"cargo_type"`
	CargoWeight   float64  `json:"cargo_weight"`
	DriverName    string   `json:"driver_name"`
	VehicleNumber string   `json:"vehicle_number"`
	DepartureTime int64    `json:"departure_time"`
	DriverID      string   `json:"driver_id"`
	SupervisorID  *string  `json:"supervisor_id"`
	Notes         *string  `json:"notes"`
}

type UpdateTripRequest struct {
	Origin        *string  `json:"origin"`
	Destination   *string  `json:"destination"`
	CargoType     *string  `json:"cargo_type"`
	CargoWeight   *float64 `json:"cargo_weight"`
	DriverName    *string  `json:"driver_name"`
	VehicleNumber *string  `json:"vehicle_number"`
	DepartureTime *int64   `json:"departure_time"`
	Notes         *string  `json:"notes"`
}

type UpdateTripStatusRequest struct {
	Status string `json:"status"`
}

// GetTrips lists trips, optionally filtered by status, driver or supervisor.
func GetTrips(tripRepo *repository.TripRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			trips []models.Trip
			err   error
		)

		switch {
		case r.URL.Query().Get("status") != "":
			status, ok := models.ParseTripStatus(r.URL.Query().Get("status"))
			if !ok {
				utils.RespondError(w, http.StatusBadRequest, "Unknown trip status")
				return
			}
			trips, err = tripRepo.GetTripsByStatus(r.Context(), status)
		case r.URL.Query().Get("driver_id") != "":
			trips, err = tripRepo.GetTripsByDriver(r.Context(), r.URL.Query().Get("driver_id"))
		case r.URL.Query().Get("supervisor_id") != "":
			trips, err = tripRepo.GetTripsBySupervisor(r.Context(), r.URL.Query().Get("supervisor_id"))
		default:
			trips, err = tripRepo.GetAllTrips(r.Context())
		}

		if err != nil {
			log.Printf("❌ Failed to list trips: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list trips")
			return
		}
		utils.Success(w, trips)
	}
}

// GetTrip returns one trip by id.
func GetTrip(tripRepo *repository.TripRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trip, err := tripRepo.GetTripByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to get trip")
			return
		}
		if trip == nil {
			utils.RespondError(w, http.StatusNotFound, "Trip not found")
			return
		}
		utils.Success(w, trip)
	}
}

// GetTripByQRCode resolves a scanned QR token to its trip.
func GetTripByQRCode(tripRepo *repository.TripRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trip, err := tripRepo.GetTripByQRCode(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to look up QR code")
			return
		}
		if trip == nil {
			utils.RespondError(w, http.StatusNotFound, "No trip for this QR code")
			return
		}
		utils.Success(w, trip)
	}
}

// CreateTrip records a new trip in PENDING with a generated QR token.
func CreateTrip(tripRepo *repository.TripRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTripRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Origin == "" || req.Destination == "" || req.DriverID == "" || req.DepartureTime == 0 {
			utils.RespondError(w, http.StatusBadRequest, "Origin, destination, driver and departure time are required")
			return
		}
		if req.CargoWeight < 0 {
			utils.RespondError(w, http.StatusBadRequest, "Cargo weight must be non-negative")
			return
		}

		now := time.Now().UnixMilli()
		qrCode := uuid.New().String()
		trip := models.Trip{
			ID:            uuid.New().String(),
			Origin:        req.Origin,
			Destination:   req.Destination,
			CargoType:     req.CargoType,
			CargoWeight:   req.CargoWeight,
			DriverName:    req.DriverName,
			VehicleNumber: req.VehicleNumber,
			DepartureTime: req.DepartureTime,
			Status:        models.TripStatusPending,
			DriverID:      req.DriverID,
			SupervisorID:  req.SupervisorID,
			CreatedAt:     now,
			UpdatedAt:     now,
			QRCode:        &qrCode,
			Notes:         req.Notes,
		}

		if err := tripRepo.InsertTrip(r.Context(), trip); err != nil {
			log.Printf("❌ Failed to create trip: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create trip")
			return
		}

		log.Printf("✅ Trip created: %s (%s → %s)", trip.ID, trip.Origin, trip.Destination)
		utils.RespondJSON(w, http.StatusCreated, trip)
	}
}

// UpdateTrip applies field changes to an existing trip and notifies the
// driver's devices.
func UpdateTrip(tripRepo *repository.TripRepository, store *database.Store, fcm *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID := chi.URLParam(r, "id")

		var req UpdateTripRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		trip, err := tripRepo.GetTripByID(r.Context(), tripID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to get trip")
			return
		}
		if trip == nil {
			utils.RespondError(w, http.StatusNotFound, "Trip not found")
			return
		}

		if req.Origin != nil {
			trip.Origin = *req.Origin
		}
		if req.Destination != nil {
			trip.Destination = *req.Destination
		}
		if req.CargoType != nil {
			trip.CargoType = *req.CargoType
		}
		if req.CargoWeight != nil {
			if *req.CargoWeight < 0 {
				utils.RespondError(w, http.StatusBadRequest, "Cargo weight must be non-negative")
				return
			}
			trip.CargoWeight = *req.CargoWeight
		}
		if req.DriverName != nil {
			trip.DriverName = *req.DriverName
		}
		if req.VehicleNumber != nil {
			trip.VehicleNumber = *req.VehicleNumber
		}
		if req.DepartureTime != nil {
			trip.DepartureTime = *req.DepartureTime
		}
		if req.Notes != nil {
			trip.Notes = req.Notes
		}

		if err := tripRepo.UpdateTrip(r.Context(), *trip); err != nil {
			log.Printf("❌ Failed to update trip %s: %v", tripID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update trip")
			return
		}

		notifyTripChange(r, store, fcm, trip.DriverID, tripID, "", "Trip details were updated")

		updated, err := tripRepo.GetTripByID(r.Context(), tripID)
		if err != nil || updated == nil {
			utils.Success(w, trip)
			return
		}
		utils.Success(w, updated)
	}
}

// UpdateTripStatus records a lifecycle transition. Invalid transitions
// are rejected; completing a trip stamps its arrival time.
func UpdateTripStatus(tripRepo *repository.TripRepository, store *database.Store, fcm *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID := chi.URLParam(r, "id")

		var req UpdateTripStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		status, ok := models.ParseTripStatus(req.Status)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "Unknown trip status")
			return
		}

		trip, err := tripRepo.GetTripByID(r.Context(), tripID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to get trip")
			return
		}
		if trip == nil {
			utils.RespondError(w, http.StatusNotFound, "Trip not found")
			return
		}

		prevStatus := trip.Status
		if !models.CanTransition(prevStatus, status) {
			utils.RespondError(w, http.StatusConflict,
				"Cannot transition from "+string(prevStatus)+" to "+string(status))
			return
		}

		if status == models.TripStatusCompleted {
			arrival := time.Now().UnixMilli()
			trip.ArrivalTime = &arrival
			trip.Status = status
			err = tripRepo.UpdateTrip(r.Context(), *trip)
		} else {
			err = tripRepo.UpdateTripStatus(r.Context(), tripID, status)
		}
		if err != nil {
			log.Printf("❌ Failed to update status for trip %s: %v", tripID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update trip status")
			return
		}

		notifyTripChange(r, store, fcm, trip.DriverID, tripID, string(status), "")

		log.Printf("✅ Trip %s: %s -> %s", tripID, prevStatus, status)
		utils.Success(w, map[string]string{"id": tripID, "status": string(status)})
	}
}

// DeleteTrip removes a trip and its recorded breadcrumbs.
func DeleteTrip(tripRepo *repository.TripRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID := chi.URLParam(r, "id")

		if err := tripRepo.DeleteTrip(r.Context(), tripID); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete trip")
			return
		}
		if err := tripRepo.DeleteLocationsByTrip(r.Context(), tripID); err != nil {
			log.Printf("⚠️  Failed to purge locations for deleted trip %s: %v", tripID, err)
		}
		utils.Success(w, map[string]bool{"ok": true})
	}
}

// GetTripCounts reports per-status counts, optionally scoped to a driver.
func GetTripCounts(tripRepo *repository.TripRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID := r.URL.Query().Get("driver_id")
		statuses := []models.TripStatus{
			models.TripStatusPending, models.TripStatusInProgress,
			models.TripStatusCompleted, models.TripStatusCancelled,
		}

		counts := make(map[string]int, len(statuses))
		for _, status := range statuses {
			var (
				n   int
				err error
			)
			if driverID != "" {
				n, err = tripRepo.CountTripsByDriverAndStatus(r.Context(), driverID, status)
			} else {
				n, err = tripRepo.CountTripsByStatus(r.Context(), status)
			}
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Failed to count trips")
				return
			}
			counts[string(status)] = n
		}
		utils.Success(w, counts)
	}
}

// notifyTripChange pushes an FCM message to every device the driver has
// registered. Delivery failures never fail the request.
func notifyTripChange(r *http.Request, store *database.Store, fcm *services.FCMService, driverID, tripID, status, message string) {
	if fcm == nil {
		return
	}

	tokens, err := store.GetFCMTokensForUser(r.Context(), driverID)
	if err != nil {
		log.Printf("⚠️  Failed to load FCM tokens for %s: %v", driverID, err)
		return
	}

	for _, t := range tokens {
		var sendErr error
		if status != "" {
			sendErr = fcm.SendTripStatusChanged(t.Token, tripID, status)
		} else {
			sendErr = fcm.SendTripUpdated(t.Token, tripID, message)
		}
		if sendErr != nil {
			log.Printf("⚠️  FCM send failed for token %d: %v", t.ID, sendErr)
		}
	}
}
